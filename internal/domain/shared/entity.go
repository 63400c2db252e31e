package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides identity and timestamps for entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch moves UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SoftDeletable is embedded by records that are flagged instead of removed.
// Deleted records stay in storage for history but are hidden from every
// active-record query.
type SoftDeletable struct {
	IsDeleted bool
}

// Deleted reports whether the record has been soft-deleted
func (s *SoftDeletable) Deleted() bool {
	return s.IsDeleted
}

// MarkDeleted flags the record as deleted. It returns false when it already was.
func (s *SoftDeletable) MarkDeleted() bool {
	if s.IsDeleted {
		return false
	}
	s.IsDeleted = true
	return true
}
