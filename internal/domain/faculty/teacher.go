package faculty

import (
	"time"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/shared"
)

// Teacher is the employment record of a person working at the school.
// It owns exactly one user and references any number of positions.
type Teacher struct {
	shared.BaseAggregateRoot
	UserID      uuid.UUID
	Code        string
	PositionIDs []uuid.UUID
	Degrees     []Degree
	IsActive    bool
	StartDate   time.Time
	EndDate     *time.Time
}

// Employment holds the employment fields supplied when hiring a teacher
type Employment struct {
	PositionIDs []uuid.UUID
	Degrees     []Degree
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
	// Code is only set when importing existing records
	Code string
}

// NewTeacher creates a teacher for the given user. The code is left empty
// unless supplied and is assigned once at persist time. The created event is
// raised as soon as the teacher has a code.
func NewTeacher(userID uuid.UUID, e Employment) (*Teacher, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError(shared.FieldError{Field: "userId", Message: "User is required"})
	}

	now := time.Now()
	start := now
	if e.StartDate != nil {
		start = *e.StartDate
	}
	degrees := normalizeDegrees(e.Degrees)

	var errs shared.FieldErrors
	validateDegrees(&errs, degrees, now)
	validateDates(&errs, start, e.EndDate)
	if e.Code != "" && !IsTeacherCode(e.Code) {
		errs.Add("code", "Invalid teacher code")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	active := true
	if e.IsActive != nil {
		active = *e.IsActive
	}

	teacher := &Teacher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Code:              e.Code,
		PositionIDs:       dedupeIDs(e.PositionIDs),
		Degrees:           degrees,
		IsActive:          active,
		StartDate:         start,
		EndDate:           e.EndDate,
	}
	if teacher.HasCode() {
		teacher.AddDomainEvent(NewTeacherCreatedEvent(teacher))
	}

	return teacher, nil
}

// AssignCode sets the teacher code. A code never changes once set.
func (t *Teacher) AssignCode(code string) error {
	if t.Code != "" {
		return shared.NewDomainError(shared.CodeInvalidState, "Teacher code is immutable")
	}
	if !IsTeacherCode(code) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid teacher code")
	}
	t.Code = code
	t.AddDomainEvent(NewTeacherCreatedEvent(t))
	return nil
}

// HasCode reports whether a code has been assigned
func (t *Teacher) HasCode() bool {
	return t.Code != ""
}

// EmploymentChanges carries a teacher update. PositionIDs and Degrees replace
// the current lists, with nil meaning empty. Nil dates and IsActive keep the
// current values.
type EmploymentChanges struct {
	PositionIDs []uuid.UUID
	Degrees     []Degree
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
}

// UpdateEmployment applies the changes
func (t *Teacher) UpdateEmployment(c EmploymentChanges) error {
	if t.Deleted() {
		return shared.ErrNotFound
	}

	start := t.StartDate
	if c.StartDate != nil {
		start = *c.StartDate
	}
	end := t.EndDate
	if c.EndDate != nil {
		e := *c.EndDate
		end = &e
	}
	degrees := normalizeDegrees(c.Degrees)

	var errs shared.FieldErrors
	validateDegrees(&errs, degrees, time.Now())
	validateDates(&errs, start, end)
	if err := errs.Err(); err != nil {
		return err
	}

	t.PositionIDs = dedupeIDs(c.PositionIDs)
	t.Degrees = degrees
	t.StartDate = start
	t.EndDate = end
	if c.IsActive != nil {
		t.IsActive = *c.IsActive
	}
	t.IncrementVersion()
	t.AddDomainEvent(NewTeacherUpdatedEvent(t))

	return nil
}

// SoftDelete flags the teacher as deleted. The caller deletes the owned user.
func (t *Teacher) SoftDelete() error {
	if !t.MarkDeleted() {
		return shared.ErrNotFound
	}
	t.IncrementVersion()
	t.AddDomainEvent(NewTeacherDeletedEvent(t))
	return nil
}

func validateDates(errs *shared.FieldErrors, start time.Time, end *time.Time) {
	if end != nil && end.Before(start) {
		errs.Add("endDate", "End date cannot be before start date")
	}
}

func normalizeDegrees(degrees []Degree) []Degree {
	out := make([]Degree, 0, len(degrees))
	for _, d := range degrees {
		out = append(out, d.normalized())
	}
	return out
}

// dedupeIDs drops nil and repeated IDs while keeping the first occurrence order
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// TeacherStats partitions non-deleted teachers by employment status
type TeacherStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// NewTeacherStats builds stats whose total is always active + inactive
func NewTeacherStats(active, inactive int64) TeacherStats {
	return TeacherStats{
		Total:    active + inactive,
		Active:   active,
		Inactive: inactive,
	}
}
