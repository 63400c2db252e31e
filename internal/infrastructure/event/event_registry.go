package event

import (
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
)

// RegisterAllEvents registers every domain event type with the serializer
// so broker consumers and tests can decode forwarded messages
func RegisterAllEvents(serializer *EventSerializer) {
	// Identity
	serializer.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	serializer.Register(identity.EventTypeUserUpdated, &identity.UserUpdatedEvent{})
	serializer.Register(identity.EventTypeUserDeleted, &identity.UserDeletedEvent{})

	// Positions
	serializer.Register(faculty.EventTypePositionCreated, &faculty.PositionCreatedEvent{})
	serializer.Register(faculty.EventTypePositionUpdated, &faculty.PositionUpdatedEvent{})
	serializer.Register(faculty.EventTypePositionDeleted, &faculty.PositionDeletedEvent{})

	// Teachers
	serializer.Register(faculty.EventTypeTeacherCreated, &faculty.TeacherCreatedEvent{})
	serializer.Register(faculty.EventTypeTeacherUpdated, &faculty.TeacherUpdatedEvent{})
	serializer.Register(faculty.EventTypeTeacherDeleted, &faculty.TeacherDeletedEvent{})
}
