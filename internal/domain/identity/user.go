package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/school/backend/internal/domain/shared"
)

// Role is the kind of person a user record represents
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// DefaultRole is assigned when a user is created without a role
const DefaultRole = RoleTeacher

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a string into a Role, accepting any letter case
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewValidationError(shared.FieldError{
			Field:   "role",
			Message: "Role must be one of STUDENT, TEACHER, ADMIN",
		})
	}
	return r, nil
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	identityRegex = regexp.MustCompile(`^[0-9]{9,12}$`)
)

// Profile holds the personal and contact fields of a user
type Profile struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Identity    string
	DateOfBirth *time.Time
}

// Normalized returns a copy with trimmed fields and a lower-cased email
func (p Profile) Normalized() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Address = strings.TrimSpace(p.Address)
	p.Identity = strings.TrimSpace(p.Identity)
	return p
}

// Validate checks every field and reports all problems at once
func (p Profile) Validate() error {
	var errs shared.FieldErrors
	validateName(&errs, p.Name)
	validateEmail(&errs, p.Email)
	validatePhone(&errs, p.PhoneNumber)
	validateIdentity(&errs, p.Identity)
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		errs.Add("dob", "Date of birth cannot be in the future")
	}
	return errs.Err()
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is the identity and contact record of a person.
// Teachers own exactly one user; students and admins exist on their own.
type User struct {
	shared.BaseAggregateRoot
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Identity    string
	DateOfBirth *time.Time
	AvatarRef   string
	Role        Role
}

// NewUser creates a user from a validated profile
func NewUser(profile Profile, role Role) (*User, error) {
	profile = profile.Normalized()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if role == "" {
		role = DefaultRole
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError(shared.FieldError{Field: "role", Message: "Invalid role"})
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Role:              role,
	}
	user.applyProfile(profile)
	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// ProfileChanges lists the fields to change. Nil fields keep their current value.
type ProfileChanges struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	Address     *string
	Identity    *string
	DateOfBirth *time.Time
	Role        *Role
}

// EmailChange returns the normalized new email when it differs from the current one
func (u *User) EmailChange(c ProfileChanges) (string, bool) {
	if c.Email == nil {
		return "", false
	}
	email := NormalizeEmail(*c.Email)
	return email, email != u.Email
}

// Update applies the changes after validating the resulting profile
func (u *User) Update(c ProfileChanges) error {
	if u.Deleted() {
		return shared.ErrNotFound
	}

	next := u.Profile()
	if c.Name != nil {
		next.Name = *c.Name
	}
	if c.Email != nil {
		next.Email = *c.Email
	}
	if c.PhoneNumber != nil {
		next.PhoneNumber = *c.PhoneNumber
	}
	if c.Address != nil {
		next.Address = *c.Address
	}
	if c.Identity != nil {
		next.Identity = *c.Identity
	}
	if c.DateOfBirth != nil {
		dob := *c.DateOfBirth
		next.DateOfBirth = &dob
	}
	next = next.Normalized()
	if err := next.Validate(); err != nil {
		return err
	}
	if c.Role != nil {
		if !c.Role.IsValid() {
			return shared.NewValidationError(shared.FieldError{Field: "role", Message: "Invalid role"})
		}
		u.Role = *c.Role
	}

	u.applyProfile(next)
	u.IncrementVersion()
	u.AddDomainEvent(NewUserUpdatedEvent(u))

	return nil
}

// SetAvatar stores the storage key of the user's avatar image
func (u *User) SetAvatar(ref string) error {
	if len(ref) > 500 {
		return shared.NewValidationError(shared.FieldError{Field: "avatar", Message: "Avatar reference cannot exceed 500 characters"})
	}
	u.AvatarRef = ref
	u.IncrementVersion()
	return nil
}

// SoftDelete hides the user from active queries
func (u *User) SoftDelete() error {
	if !u.MarkDeleted() {
		return shared.ErrNotFound
	}
	u.IncrementVersion()
	u.AddDomainEvent(NewUserDeletedEvent(u))
	return nil
}

// Profile returns the user's personal fields
func (u *User) Profile() Profile {
	return Profile{
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Identity:    u.Identity,
		DateOfBirth: u.DateOfBirth,
	}
}

func (u *User) applyProfile(p Profile) {
	u.Name = p.Name
	u.Email = p.Email
	u.PhoneNumber = p.PhoneNumber
	u.Address = p.Address
	u.Identity = p.Identity
	u.DateOfBirth = p.DateOfBirth
}

// Validation functions

func validateName(errs *shared.FieldErrors, name string) {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		errs.Add("name", "Name is required")
	case n < 2 || n > 100:
		errs.Add("name", "Name must be between 2 and 100 characters")
	}
}

func validateEmail(errs *shared.FieldErrors, email string) {
	switch {
	case email == "":
		errs.Add("email", "Email is required")
	case len(email) > 200:
		errs.Add("email", "Email cannot exceed 200 characters")
	case !emailRegex.MatchString(email):
		errs.Add("email", "Invalid email format")
	}
}

func validatePhone(errs *shared.FieldErrors, phone string) {
	if phone == "" {
		return
	}
	if len(phone) > 20 || !phoneRegex.MatchString(phone) {
		errs.Add("phoneNumber", "Invalid phone number")
	}
}

func validateIdentity(errs *shared.FieldErrors, identity string) {
	if identity == "" {
		return
	}
	if !identityRegex.MatchString(identity) {
		errs.Add("identity", "Identity number must contain 9 to 12 digits")
	}
}

// ensure the aggregate satisfies the shared contract
var _ shared.AggregateRoot = (*User)(nil)
