package faculty

import (
	"github.com/school/backend/internal/domain/shared"
)

// Aggregate type constant for Position
const AggregateTypePosition = "TeacherPosition"

// Position event types
const (
	EventTypePositionCreated = "PositionCreated"
	EventTypePositionUpdated = "PositionUpdated"
	EventTypePositionDeleted = "PositionDeleted"
)

// PositionCreatedEvent is published when a position is created
type PositionCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewPositionCreatedEvent creates a new PositionCreatedEvent
func NewPositionCreatedEvent(p *Position) *PositionCreatedEvent {
	return &PositionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePositionCreated, AggregateTypePosition, p.ID),
		Code:            p.Code,
		Name:            p.Name,
	}
}

// PositionUpdatedEvent is published when a position changes
type PositionUpdatedEvent struct {
	shared.BaseDomainEvent
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// NewPositionUpdatedEvent creates a new PositionUpdatedEvent
func NewPositionUpdatedEvent(p *Position) *PositionUpdatedEvent {
	return &PositionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePositionUpdated, AggregateTypePosition, p.ID),
		Code:            p.Code,
		Name:            p.Name,
		IsActive:        p.IsActive,
	}
}

// PositionDeletedEvent is published when a position is soft-deleted
type PositionDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewPositionDeletedEvent creates a new PositionDeletedEvent
func NewPositionDeletedEvent(p *Position) *PositionDeletedEvent {
	return &PositionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePositionDeleted, AggregateTypePosition, p.ID),
		Code:            p.Code,
	}
}
