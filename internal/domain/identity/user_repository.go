package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
// Every Find method ignores soft-deleted users unless stated otherwise.
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// Update persists changes to an existing user.
	// It returns shared.ErrNotFound when no active user has the ID.
	Update(ctx context.Context, user *User) error

	// SoftDelete flags the user as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an active user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs returns users with the given IDs, deleted ones included
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// FindActiveByEmail returns the active user with the email, or nil
	FindActiveByEmail(ctx context.Context, email string) (*User, error)

	// ExistsActiveByEmail checks whether an active user other than excludeID uses the email
	ExistsActiveByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	// FindAll returns one page of active users and the filtered total
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	// Count returns the number of active users
	Count(ctx context.Context) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search matches name, email or phone number, case-insensitive
	Search string

	// Role restricts results to one role
	Role *Role

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  10,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
