package model

import "time"

// DateOverride is an operator-managed exception to the weekly schedule for a single
// calendar date. ForceOpen wins over ForceClosed; both lose to the special-date list,
// which is not overridable.
type DateOverride struct {
	Date        string    `json:"date" bson:"_id" validate:"required,datetime=2006-01-02"`
	ForceOpen   bool      `json:"force_open" bson:"force_open"`
	ForceClosed bool      `json:"force_closed" bson:"force_closed"`
	Note        string    `json:"note,omitempty" bson:"note,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
