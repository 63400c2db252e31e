package models

import (
	"time"

	"github.com/school/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
// Email is stored normalized, so the partial unique index over active rows
// enforces case-insensitive uniqueness.
type UserModel struct {
	AggregateModel
	Name        string        `gorm:"type:varchar(100);not null"`
	Email       string        `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email_active,where:is_deleted = false"`
	PhoneNumber string        `gorm:"type:varchar(20)"`
	Address     string        `gorm:"type:varchar(500)"`
	Identity    string        `gorm:"type:varchar(12)"`
	DateOfBirth *time.Time    `gorm:"column:dob"`
	AvatarRef   string        `gorm:"column:avatar;type:varchar(500)"`
	Role        identity.Role `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		PhoneNumber:       m.PhoneNumber,
		Address:           m.Address,
		Identity:          m.Identity,
		DateOfBirth:       m.DateOfBirth,
		AvatarRef:         m.AvatarRef,
		Role:              m.Role,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PhoneNumber = u.PhoneNumber
	m.Address = u.Address
	m.Identity = u.Identity
	m.DateOfBirth = u.DateOfBirth
	m.AvatarRef = u.AvatarRef
	m.Role = u.Role
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
