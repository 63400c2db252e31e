package event

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBrokerForwarder_PublishesThroughChannel(t *testing.T) {
	publisher, err := NewPublisher(config.EventConfig{Topic: "school.events"}, zap.NewNop())
	require.NoError(t, err)
	defer publisher.Close()

	channel, ok := publisher.(*gochannel.GoChannel)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := channel.Subscribe(ctx, "school.events")
	require.NoError(t, err)

	serializer := NewEventSerializer()
	serializer.Register("TeacherCreated", &testEvent{})
	forwarder := NewBrokerForwarder(publisher, serializer, "school.events", zap.NewNop())
	assert.Empty(t, forwarder.EventTypes())

	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(forwarder)

	event := newTestEvent("TeacherCreated")
	require.NoError(t, bus.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.EventID().String(), msg.UUID)
		assert.Equal(t, "TeacherCreated", msg.Metadata.Get(MetadataEventType))
		assert.Equal(t, event.AggregateID().String(), msg.Metadata.Get(MetadataAggregateID))

		decoded, err := serializer.Deserialize(msg.Metadata.Get(MetadataEventType), msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, "test data", decoded.(*testEvent).Data)
	case <-ctx.Done():
		t.Fatal("forwarded message not received")
	}
}

type closedPublisher struct{}

func (closedPublisher) Publish(string, ...*message.Message) error { return assert.AnError }
func (closedPublisher) Close() error                              { return nil }

func TestBrokerForwarder_PublishError(t *testing.T) {
	forwarder := NewBrokerForwarder(closedPublisher{}, NewEventSerializer(), "school.events", zap.NewNop())
	var event shared.DomainEvent = newTestEvent("UserCreated")

	err := forwarder.Handle(context.Background(), event)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "forward UserCreated to school.events")
}
