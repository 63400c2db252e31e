package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/interfaces/http/dto"
)

var (
	positionCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phoneRegex        = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	digitsRegex       = regexp.MustCompile(`^[0-9]+$`)
)

// DateLayouts are the accepted formats for date fields, tried in order
var DateLayouts = []string{time.RFC3339, time.RFC3339Nano, "2006-01-02"}

// ParseDate parses a date field in any of DateLayouts
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid date")
}

// SetupValidator configures the validator with JSON field names and the
// custom tags used by request DTOs
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	RegisterValidations(v)
}

// RegisterValidations installs the tag name func and custom validators on v
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("position_code", matchString(positionCodeRegex))
	_ = v.RegisterValidation("phone", matchString(phoneRegex))
	_ = v.RegisterValidation("digits", matchString(digitsRegex))
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	// past_year accepts years up to and including the current one
	_ = v.RegisterValidation("past_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// FormatValidationErrors converts binding errors into field details.
// Errors that are not validator errors (malformed JSON, wrong types) become
// a single body-level detail.
func FormatValidationErrors(err error) []shared.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []shared.FieldError{{Field: "body", Message: "Malformed request body"}}
	}

	details := make([]shared.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, shared.FieldError{
			Field:   fieldPath(e),
			Message: getValidationMessage(e),
		})
	}
	return details
}

// HandleValidationError answers 400 with the itemized validation errors
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Invalid input data",
		GetRequestID(c),
		FormatValidationErrors(err),
	))
}

// fieldPath drops the request struct name from the namespace so nested
// fields read as degrees[0].year
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " items"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "position_code":
		return "Only letters, digits and underscores are allowed"
	case "phone":
		return "Invalid phone number"
	case "digits":
		return "Must contain only digits"
	case "date":
		return "Invalid date, expected RFC3339 or YYYY-MM-DD"
	case "past_year":
		return "Year cannot be in the future"
	default:
		return "Invalid value"
	}
}
