package notify

import (
	"time"

	"mesero/pkg/model"
)

const EventBookingCreated = "booking.created"

// BookingCreatedEvent is the payload published when a booking commits.
// Consumers (the operator notifier) read it off the booking events topic.
type BookingCreatedEvent struct {
	BookingID    string    `json:"booking_id"`
	CustomerName string    `json:"customer_name"`
	ContactPhone string    `json:"contact_phone"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	PartySize    int       `json:"party_size"`
	RiceType     *string   `json:"rice_type,omitempty"`
	RiceServings *int      `json:"rice_servings,omitempty"`
	HighChairs   int       `json:"high_chairs"`
	Strollers    int       `json:"strollers"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewBookingCreatedEvent(booking *model.Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		BookingID:    booking.ID,
		CustomerName: booking.CustomerName,
		ContactPhone: booking.ContactPhone,
		Date:         booking.Date,
		Time:         booking.Time,
		PartySize:    booking.PartySize,
		RiceType:     booking.RiceType,
		RiceServings: booking.RiceServings,
		HighChairs:   booking.HighChairs,
		Strollers:    booking.Strollers,
		Comment:      booking.Comment,
		CreatedAt:    booking.CreatedAt,
	}
}
