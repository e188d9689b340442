package notify

import (
	"context"

	"mesero/pkg/config"
	"mesero/pkg/kafka"
	"mesero/pkg/model"
)

// Publisher writes booking events to Kafka, keyed by contact phone so
// events for one customer stay ordered.
type Publisher struct {
	producer *kafka.Producer
	cfg      *config.Config
}

func NewPublisher(producer *kafka.Producer, cfg *config.Config) *Publisher {
	return &Publisher{
		producer: producer,
		cfg:      cfg,
	}
}

func (p *Publisher) PublishBookingCreated(ctx context.Context, booking *model.Booking) error {
	msg := kafka.NewMessage().
		WithKey(booking.ContactPhone).
		WithValue(NewBookingCreatedEvent(booking)).
		WithEventType(EventBookingCreated).
		WithSource("mesero-bot").
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
