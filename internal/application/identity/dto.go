package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/identity"
	"github.com/school/backend/internal/domain/shared"
)

// CreateUserInput contains input for creating a user.
// An empty Role creates a student.
type CreateUserInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Identity    string
	DateOfBirth *time.Time
	Role        string
}

// UpdateUserInput contains input for updating a user. Nil fields are left unchanged.
type UpdateUserInput struct {
	ID          uuid.UUID
	Name        *string
	Email       *string
	PhoneNumber *string
	Address     *string
	Identity    *string
	DateOfBirth *time.Time
	Role        *string
}

// ListUsersInput contains paging and filter options for listing users
type ListUsersInput struct {
	Page   int
	Limit  int
	Role   string
	Search string
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Address     string     `json:"address"`
	Identity    string     `json:"identity"`
	DateOfBirth *time.Time `json:"dob,omitempty"`
	Avatar      string     `json:"avatar"`
	Role        string     `json:"role"`
	IsDeleted   bool       `json:"isDeleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserListResult is one page of users
type UserListResult struct {
	Users      []UserResponse    `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// AvatarUploadInput describes the file a client wants to upload
type AvatarUploadInput struct {
	UserID      uuid.UUID
	FileName    string
	ContentType string
	FileSize    int64
}

// AvatarUploadResult carries the presigned URL the client uploads to
type AvatarUploadResult struct {
	UploadURL  string    `json:"uploadUrl"`
	StorageKey string    `json:"storageKey"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// AvatarDownloadResult carries a presigned URL for reading the avatar
type AvatarDownloadResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToUserResponse converts a domain user to its API representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Identity:    u.Identity,
		DateOfBirth: u.DateOfBirth,
		Avatar:      u.AvatarRef,
		Role:        string(u.Role),
		IsDeleted:   u.IsDeleted,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}
