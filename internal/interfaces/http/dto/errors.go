package dto

import (
	"net/http"

	"github.com/school/backend/internal/domain/shared"
)

// Error codes returned in the response envelope
const (
	ErrCodeValidation     = shared.CodeValidationFailed
	ErrCodeInvalidInput   = shared.CodeInvalidInput
	ErrCodeNotFound       = shared.CodeNotFound
	ErrCodeAlreadyExists  = shared.CodeAlreadyExists
	ErrCodeDuplicateEmail = shared.CodeDuplicateEmail
	ErrCodeDuplicateCode  = shared.CodeDuplicateCode
	ErrCodeInvalidState   = shared.CodeInvalidState

	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTimeout         = "REQUEST_TIMEOUT"
	ErrCodeBodyTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeServiceDegraded = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Duplicates are reported as 400 like any other invalid request.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeAlreadyExists:  http.StatusBadRequest,
	ErrCodeDuplicateEmail: http.StatusBadRequest,
	ErrCodeDuplicateCode:  http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,

	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeBodyTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeServiceDegraded: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
