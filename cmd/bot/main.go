package main

import (
	"context"

	"github.com/joho/godotenv"

	"mesero/internal/availability"
	"mesero/internal/booking"
	"mesero/internal/conversation"
	"mesero/internal/extractor"
	"mesero/internal/llm"
	"mesero/internal/notify"
	"mesero/internal/webhook"
	"mesero/internal/whatsapp"
	"mesero/pkg/app"
	"mesero/pkg/config"
	"mesero/pkg/kafka"
	kafka_config "mesero/pkg/kafka/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("mesero-bot")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	calendar := availability.NewMongoCalendarRepository(cfg)
	checker, err := availability.NewValidator(cfg, calendar)
	if err != nil {
		cfg.Log.Fatal("Failed to build availability validator", "error", err)
	}

	publisher := initPublisher(cfg)
	if publisher != nil {
		defer publisher.Close()
	}

	finalizer := initFinalizer(cfg, calendar, publisher)

	store := conversation.NewStore(cfg.SessionIdleTTL, cfg.Log)
	defer store.Stop()
	machine := conversation.NewMachine(cfg, store, checker, finalizer)

	director, err := llm.NewGeminiDirector(context.Background(), cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create Gemini client", "error", err)
	}

	webhookHandler := webhook.NewHandler(
		cfg,
		director,
		extractor.NewExtractor(cfg),
		machine,
		store,
		whatsapp.NewClient(cfg),
	)
	healthHandler := webhook.NewHealthHandler(cfg.Client.Mongo, cfg.Log)

	application := app.NewApplication(cfg)
	application.SetApp(healthHandler, webhookHandler)
	application.Run()
}

// initPublisher builds the booking events producer. Kafka is optional for
// the bot: without a broker the bot still takes bookings, only the operator
// notifications are lost.
func initPublisher(cfg *config.Config) *notify.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Invalid Kafka configuration, booking events disabled", "error", err)
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic)
	if err != nil {
		cfg.Log.Warn("Failed to create Kafka producer, booking events disabled", "error", err)
		return nil
	}

	return notify.NewPublisher(producer, cfg)
}

func initFinalizer(cfg *config.Config, calendar availability.CalendarRepository, publisher *notify.Publisher) *booking.Finalizer {
	// A typed nil would dodge the finalizer's nil check on the interface.
	var events booking.EventPublisher
	if publisher != nil {
		events = publisher
	}

	return booking.NewFinalizer(
		cfg,
		booking.NewMongoBookingRepository(cfg),
		booking.NewMongoLockRepository(cfg),
		calendar,
		booking.NewBookingValidator(cfg.Log),
		events,
	)
}
