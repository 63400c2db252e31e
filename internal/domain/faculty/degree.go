package faculty

import (
	"fmt"
	"strings"
	"time"

	"github.com/school/backend/internal/domain/shared"
)

// MinDegreeYear is the earliest accepted graduation year
const MinDegreeYear = 1950

// Degree is an academic qualification held by a teacher
type Degree struct {
	Type        string
	School      string
	Major       string
	Year        *int
	IsGraduated bool
}

func (d Degree) normalized() Degree {
	d.Type = strings.TrimSpace(d.Type)
	d.School = strings.TrimSpace(d.School)
	d.Major = strings.TrimSpace(d.Major)
	return d
}

func validateDegrees(errs *shared.FieldErrors, degrees []Degree, now time.Time) {
	for i, d := range degrees {
		prefix := fmt.Sprintf("degrees[%d].", i)
		if d.Type == "" {
			errs.Add(prefix+"type", "Degree type is required")
		}
		if d.School == "" {
			errs.Add(prefix+"school", "School is required")
		}
		if d.Major == "" {
			errs.Add(prefix+"major", "Major is required")
		}
		if d.Year != nil && (*d.Year < MinDegreeYear || *d.Year > now.Year()) {
			errs.Add(prefix+"year", fmt.Sprintf("Graduation year must be between %d and %d", MinDegreeYear, now.Year()))
		}
	}
}
