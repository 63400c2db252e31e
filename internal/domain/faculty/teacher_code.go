package faculty

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TeacherCodePrefix starts every teacher code
const TeacherCodePrefix = "GV"

var teacherCodeRegex = regexp.MustCompile(`^GV(\d{4})(\d{4,})$`)

// FormatTeacherCode renders GV<year><seq>, with seq padded to four digits
func FormatTeacherCode(year int, seq int64) string {
	return fmt.Sprintf("%s%d%04d", TeacherCodePrefix, year, seq)
}

// ParseTeacherCode splits a code into its year and sequence parts
func ParseTeacherCode(code string) (year int, seq int64, ok bool) {
	m := teacherCodeRegex.FindStringSubmatch(code)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	seq, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return year, seq, true
}

// IsTeacherCode reports whether code is a well formed teacher code
func IsTeacherCode(code string) bool {
	_, _, ok := ParseTeacherCode(code)
	return ok
}

// TeacherCodeSequence hands out per-year sequence numbers. Next must be an
// atomic increment-and-fetch so concurrent callers never see the same value.
type TeacherCodeSequence interface {
	Next(ctx context.Context, year int) (int64, error)

	// EnsureAtLeast raises the stored value for year to at least value
	EnsureAtLeast(ctx context.Context, year int, value int64) error
}

// TeacherCodeGenerator assigns codes from a sequence
type TeacherCodeGenerator struct {
	sequence TeacherCodeSequence
	now      func() time.Time
}

// NewTeacherCodeGenerator creates a generator backed by sequence
func NewTeacherCodeGenerator(sequence TeacherCodeSequence) *TeacherCodeGenerator {
	return &TeacherCodeGenerator{sequence: sequence, now: time.Now}
}

// WithClock replaces the clock used to pick the year
func (g *TeacherCodeGenerator) WithClock(now func() time.Time) *TeacherCodeGenerator {
	g.now = now
	return g
}

// Generate returns the next code for the current year
func (g *TeacherCodeGenerator) Generate(ctx context.Context) (string, error) {
	year := g.now().Year()
	seq, err := g.sequence.Next(ctx, year)
	if err != nil {
		return "", fmt.Errorf("next teacher code sequence for %d: %w", year, err)
	}
	return FormatTeacherCode(year, seq), nil
}
