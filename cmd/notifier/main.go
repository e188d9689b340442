package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mesero/internal/notify"
	"mesero/internal/whatsapp"
	"mesero/pkg/config"
	"mesero/pkg/kafka"
	kafka_config "mesero/pkg/kafka/config"
)

// The notifier consumes booking.created events and alerts the restaurant
// operators over WhatsApp. It runs separately from the bot so a notification
// backlog never slows down live conversations.
func main() {
	_ = godotenv.Load()

	cfg := config.Load("mesero-notifier")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(func(msg string, args ...any) {
		cfg.Log.Info(msg, args...)
	})

	worker := notify.NewWorker(cfg, whatsapp.NewClient(cfg))

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.BookingEventsTopic, cfg.NotifierGroupID, worker.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if cfg.BookingEventsDLQ != "" {
		dlq, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsDLQ)
		if err != nil {
			cfg.Log.Fatal("Failed to create DLQ producer", "error", err)
		}
		defer dlq.Close()
		consumer.WithDLQ(dlq)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Notifier started",
		"topic", cfg.BookingEventsTopic,
		"group_id", cfg.NotifierGroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped gracefully")
}
