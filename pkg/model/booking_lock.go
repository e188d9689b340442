package model

import "time"

// BookingLock is an advisory lock serializing commits for one date/time slot.
// The unique _id makes concurrent acquisition fail with a duplicate key error,
// which is how the capacity re-check and insert are kept atomic per slot.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
