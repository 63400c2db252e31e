package event

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/school/backend/internal/domain/shared"
	"github.com/school/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message metadata keys set on every forwarded event
const (
	MetadataEventType     = "event_type"
	MetadataAggregateID   = "aggregate_id"
	MetadataAggregateType = "aggregate_type"
	MetadataOccurredAt    = "occurred_at"
)

// NewPublisher returns a watermill publisher for cfg: Kafka when brokers are
// configured, an in-process channel otherwise
func NewPublisher(cfg config.EventConfig, logger *zap.Logger) (message.Publisher, error) {
	wmLogger := NewZapLoggerAdapter(logger.Named("watermill"))
	if len(cfg.KafkaBrokers) == 0 {
		return gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger), nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return publisher, nil
}

// BrokerForwarder is a wildcard event handler that republishes every domain
// event as a JSON message on a broker topic
type BrokerForwarder struct {
	publisher  message.Publisher
	serializer *EventSerializer
	topic      string
	logger     *zap.Logger
}

// NewBrokerForwarder creates a forwarder publishing to topic
func NewBrokerForwarder(publisher message.Publisher, serializer *EventSerializer, topic string, logger *zap.Logger) *BrokerForwarder {
	return &BrokerForwarder{
		publisher:  publisher,
		serializer: serializer,
		topic:      topic,
		logger:     logger,
	}
}

// EventTypes returns nil so the forwarder receives all events
func (f *BrokerForwarder) EventTypes() []string {
	return nil
}

// Handle publishes the event
func (f *BrokerForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := f.serializer.Serialize(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID().String(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataEventType, event.EventType())
	msg.Metadata.Set(MetadataAggregateID, event.AggregateID().String())
	msg.Metadata.Set(MetadataAggregateType, event.AggregateType())
	msg.Metadata.Set(MetadataOccurredAt, event.OccurredAt().UTC().Format(time.RFC3339Nano))

	if err := f.publisher.Publish(f.topic, msg); err != nil {
		return fmt.Errorf("forward %s to %s: %w", event.EventType(), f.topic, err)
	}
	f.logger.Debug("event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("topic", f.topic),
	)
	return nil
}

var _ shared.EventHandler = (*BrokerForwarder)(nil)

// ZapLoggerAdapter lets watermill log through zap
type ZapLoggerAdapter struct {
	logger *zap.Logger
}

// NewZapLoggerAdapter wraps logger for watermill
func NewZapLoggerAdapter(logger *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{logger: logger}
}

func (a *ZapLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (a *ZapLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, zapFields(fields)...)
}

func (a *ZapLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

// Trace maps to debug; zap has no lower level
func (a *ZapLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

func (a *ZapLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZapLoggerAdapter{logger: a.logger.With(zapFields(fields)...)}
}

func zapFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

var _ watermill.LoggerAdapter = (*ZapLoggerAdapter)(nil)
