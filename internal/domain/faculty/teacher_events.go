package faculty

import (
	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/shared"
)

// Aggregate type constant for Teacher
const AggregateTypeTeacher = "Teacher"

// Teacher event types
const (
	EventTypeTeacherCreated = "TeacherCreated"
	EventTypeTeacherUpdated = "TeacherUpdated"
	EventTypeTeacherDeleted = "TeacherDeleted"
)

// TeacherEventTypes lists every teacher event type
var TeacherEventTypes = []string{
	EventTypeTeacherCreated,
	EventTypeTeacherUpdated,
	EventTypeTeacherDeleted,
}

// TeacherCreatedEvent is published when a teacher receives its code
type TeacherCreatedEvent struct {
	shared.BaseDomainEvent
	UserID      uuid.UUID   `json:"userId"`
	Code        string      `json:"code"`
	PositionIDs []uuid.UUID `json:"teacherPositionsId"`
}

// NewTeacherCreatedEvent creates a new TeacherCreatedEvent
func NewTeacherCreatedEvent(t *Teacher) *TeacherCreatedEvent {
	return &TeacherCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherCreated, AggregateTypeTeacher, t.ID),
		UserID:          t.UserID,
		Code:            t.Code,
		PositionIDs:     t.PositionIDs,
	}
}

// TeacherUpdatedEvent is published when employment data changes
type TeacherUpdatedEvent struct {
	shared.BaseDomainEvent
	Code     string `json:"code"`
	IsActive bool   `json:"isActive"`
}

// NewTeacherUpdatedEvent creates a new TeacherUpdatedEvent
func NewTeacherUpdatedEvent(t *Teacher) *TeacherUpdatedEvent {
	return &TeacherUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherUpdated, AggregateTypeTeacher, t.ID),
		Code:            t.Code,
		IsActive:        t.IsActive,
	}
}

// TeacherDeletedEvent is published when a teacher is soft-deleted
type TeacherDeletedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"userId"`
	Code   string    `json:"code"`
}

// NewTeacherDeletedEvent creates a new TeacherDeletedEvent
func NewTeacherDeletedEvent(t *Teacher) *TeacherDeletedEvent {
	return &TeacherDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeacherDeleted, AggregateTypeTeacher, t.ID),
		UserID:          t.UserID,
		Code:            t.Code,
	}
}
