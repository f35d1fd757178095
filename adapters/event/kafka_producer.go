package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/roomnet/roomnet-api/internal/config"
	"github.com/roomnet/roomnet-api/internal/domain/profile"
)

const (
	TopicSurveyEvents = "survey.events"

	SurveyEventTypeUpserted = "survey.upserted"
)

// RecordSnapshot is the wire form of one survey row inside a change
// event. CompletedAt is the field consumers edge-trigger on.
type RecordSnapshot struct {
	UserID      uuid.UUID  `json:"user_id"`
	CompletedAt *time.Time `json:"completed_at"`
}

// SurveyEventPayload carries the old and new snapshots of one row, the
// same shape the hosted backend pushes for table changes. Old is nil
// for a first-time submission.
type SurveyEventPayload struct {
	EventType string          `json:"event_type"`
	Old       *RecordSnapshot `json:"old"`
	New       *RecordSnapshot `json:"new"`
}

type KafkaProducerClient struct {
	SurveyEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	surveyWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicSurveyEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		SurveyEventsWriter: surveyWriter,
	}, nil
}

func snapshot(p *profile.RoommateProfile) *RecordSnapshot {
	if p == nil {
		return nil
	}
	return &RecordSnapshot{
		UserID:      p.UserID,
		CompletedAt: p.CompletedAt,
	}
}

// PublishSurveyEvent emits an upsert notification keyed by the user so
// events for one user stay ordered within a partition.
func (c *KafkaProducerClient) PublishSurveyEvent(ctx context.Context, oldRecord, newRecord *profile.RoommateProfile) error {
	payload := SurveyEventPayload{
		EventType: SurveyEventTypeUpserted,
		Old:       snapshot(oldRecord),
		New:       snapshot(newRecord),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal survey event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(newRecord.UserID.String()),
		Value: value,
	}
	if err := c.SurveyEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write survey event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.SurveyEventsWriter != nil {
		c.SurveyEventsWriter.Close()
	}
}
