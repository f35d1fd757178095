package main

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/adapters/event"
	"github.com/roomnet/roomnet-api/adapters/notify"
	completionUC "github.com/roomnet/roomnet-api/internal/application/usecase/completion"
	"github.com/roomnet/roomnet-api/internal/config"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

func main() {

	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	log := logger.NewZapLogger(cfg.App.Env)
	log.Info("Starting RoomNet Completion Worker...", zap.String("env", cfg.App.Env))

	// Completion webhook
	notifier, err := notify.NewCompletionWebhook(cfg)
	if err != nil {
		log.Fatal("Failed to initialize completion webhook", err)
	}

	// Worker Use Case
	processor := completionUC.NewProcessor(notifier, log,
		cfg.Completion.RetryBackoff, cfg.Completion.MaxAttempts)

	// Kafka Consumer
	surveyConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicSurveyEvents,
		GroupID:  "completion-processor-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer surveyConsumer.Close()

	log.Info("Worker listening", zap.String("topic", event.TopicSurveyEvents))

	ctx := context.Background()
	for {
		msg, err := surveyConsumer.ReadMessage(ctx)
		if err != nil {
			log.Error("Failed to read message from Kafka", err)
			continue
		}

		var payload event.SurveyEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			log.Error("Failed to unmarshal event. Skipping.", err,
				zap.String("key", string(msg.Key)))
			commitMessage(surveyConsumer, msg, log)
			continue
		}

		enqueued := processor.HandleEvent(toRecord(payload.Old), toRecord(payload.New))
		log.Info("Processed event",
			zap.String("event_type", payload.EventType),
			zap.String("key", string(msg.Key)),
			zap.Bool("enqueued", enqueued))

		// Delivery retries are the processor's job; the offset moves on
		// regardless so one bad row can't stall the partition.
		commitMessage(surveyConsumer, msg, log)
	}
}

func toRecord(s *event.RecordSnapshot) *completionUC.Record {
	if s == nil {
		return nil
	}
	return &completionUC.Record{
		UserID:      s.UserID.String(),
		CompletedAt: s.CompletedAt,
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
