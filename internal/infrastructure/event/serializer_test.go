package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RoundTripsTeacherEvent(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	active := true
	teacher, err := faculty.NewTeacher(uuid.New(), faculty.Employment{
		PositionIDs: []uuid.UUID{uuid.New()},
		IsActive:    &active,
	})
	require.NoError(t, err)
	require.NoError(t, teacher.AssignCode("GV20240001"))
	original := teacher.GetDomainEvents()[0]

	data, err := serializer.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"GV20240001"`)

	decoded, err := serializer.Deserialize(faculty.EventTypeTeacherCreated, data)
	require.NoError(t, err)
	created, ok := decoded.(*faculty.TeacherCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, teacher.ID, created.AggregateID())
	assert.Equal(t, "GV20240001", created.Code)
	assert.WithinDuration(t, original.OccurredAt(), created.OccurredAt(), time.Millisecond)
}

func TestEventSerializer_Errors(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("Unknown", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	serializer.Register("TestEvent", &testEvent{})
	_, err = serializer.Deserialize("TestEvent", []byte(`{not json`))
	assert.ErrorContains(t, err, "failed to unmarshal event")
}

func TestRegisterAllEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	types := serializer.RegisteredTypes()
	assert.Len(t, types, 9)
	for _, eventType := range faculty.TeacherEventTypes {
		assert.True(t, serializer.IsRegistered(eventType))
	}
	assert.IsNonDecreasing(t, types)
}
