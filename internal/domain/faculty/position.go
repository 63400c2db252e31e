package faculty

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/shared"
)

var positionCodeRegex = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Position is a job role a teacher may hold, such as a subject teacher or a
// homeroom teacher. Codes are unique among positions that are not deleted.
type Position struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	IsActive    bool
}

// NewPosition creates a new position
func NewPosition(code, name, description string, isActive *bool) (*Position, error) {
	code = NormalizePositionCode(code)
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	var errs shared.FieldErrors
	validatePositionCode(&errs, code)
	validatePositionName(&errs, name)
	validatePositionDescription(&errs, description)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	active := true
	if isActive != nil {
		active = *isActive
	}

	position := &Position{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Description:       description,
		IsActive:          active,
	}
	position.AddDomainEvent(NewPositionCreatedEvent(position))

	return position, nil
}

// PositionChanges carries a position update. Code and Name are always
// replaced; nil pointers keep the current value.
type PositionChanges struct {
	Code        string
	Name        string
	Description *string
	IsActive    *bool
}

// CodeChanged reports whether applying c would change the position code
func (p *Position) CodeChanged(c PositionChanges) bool {
	return NormalizePositionCode(c.Code) != p.Code
}

// Update applies the changes
func (p *Position) Update(c PositionChanges) error {
	if p.Deleted() {
		return shared.ErrNotFound
	}

	code := NormalizePositionCode(c.Code)
	name := strings.TrimSpace(c.Name)
	description := p.Description
	if c.Description != nil {
		description = strings.TrimSpace(*c.Description)
	}

	var errs shared.FieldErrors
	validatePositionCode(&errs, code)
	validatePositionName(&errs, name)
	validatePositionDescription(&errs, description)
	if err := errs.Err(); err != nil {
		return err
	}

	p.Code = code
	p.Name = name
	p.Description = description
	if c.IsActive != nil {
		p.IsActive = *c.IsActive
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewPositionUpdatedEvent(p))

	return nil
}

// SoftDelete flags the position as deleted. Teachers that still reference
// it are left untouched.
func (p *Position) SoftDelete() error {
	if !p.MarkDeleted() {
		return shared.ErrNotFound
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewPositionDeletedEvent(p))
	return nil
}

// NormalizePositionCode trims and upper-cases a position code
func NormalizePositionCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PositionIndex maps position IDs to positions
func PositionIndex(positions []*Position) map[uuid.UUID]*Position {
	idx := make(map[uuid.UUID]*Position, len(positions))
	for _, p := range positions {
		idx[p.ID] = p
	}
	return idx
}

func validatePositionCode(errs *shared.FieldErrors, code string) {
	switch {
	case code == "":
		errs.Add("code", "Position code is required")
	case len(code) < 2 || len(code) > 20:
		errs.Add("code", "Position code must be between 2 and 20 characters")
	case !positionCodeRegex.MatchString(code):
		errs.Add("code", "Position code may only contain uppercase letters, digits and underscores")
	}
}

func validatePositionName(errs *shared.FieldErrors, name string) {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		errs.Add("name", "Position name is required")
	case n < 2 || n > 100:
		errs.Add("name", "Position name must be between 2 and 100 characters")
	}
}

func validatePositionDescription(errs *shared.FieldErrors, description string) {
	if utf8.RuneCountInString(description) > 500 {
		errs.Add("des", "Description cannot exceed 500 characters")
	}
}
