package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// Publisher announces generated documents.
type Publisher interface {
	PublishExport(ctx context.Context, event models.ExportEvent) error
}

// MessageWriter is the part of kafka.Writer the publisher needs. It allows
// for easy mocking in unit tests.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes export events as JSON keyed by itinerary id.
type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a writer for topic on broker.
func NewKafkaPublisher(broker, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, logger)
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) PublishExport(ctx context.Context, event models.ExportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal export event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ItineraryID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("itinerary.exported")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish export event: %w", err)
	}
	p.logger.Debug("Published export event", zap.String("itineraryID", event.ItineraryID.String()))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
