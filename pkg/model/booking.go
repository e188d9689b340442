package model

import (
	"time"
)

// Date and time-of-day formats used everywhere a booking is persisted or compared.
// Customers see dd/MM/yyyy; storage and rule evaluation use these canonical forms.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerName string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=80"`
	ContactPhone string    `json:"contact_phone" bson:"contact_phone" validate:"required,len=9,numeric"`
	Date         string    `json:"reservation_date" bson:"reservation_date" validate:"required,datetime=2006-01-02"`
	Time         string    `json:"reservation_time" bson:"reservation_time" validate:"required,datetime=15:04"`
	PartySize    int       `json:"party_size" bson:"party_size" validate:"required,min=1,max=200"`
	Comment      string    `json:"comment,omitempty" bson:"comment,omitempty" validate:"omitempty,max=500"`
	RiceType     *string   `json:"arroz_type,omitempty" bson:"arroz_type,omitempty" validate:"omitempty,min=2,max=100"`
	RiceServings *int      `json:"arroz_servings,omitempty" bson:"arroz_servings,omitempty" validate:"omitempty,min=2,max=200"`
	HighChairs   int       `json:"high_chairs" bson:"high_chairs" validate:"min=0,max=20"`
	Strollers    int       `json:"strollers" bson:"strollers" validate:"min=0,max=20"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RiceChoice is the resolved rice slot of a draft: either a named selection with a
// serving count, or an explicit decline. An unresolved slot is represented by the
// absence of a RiceChoice, never by a zero value.
type RiceChoice struct {
	Declined bool
	Type     string
	Servings int
}
