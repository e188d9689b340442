package availability

import (
	"context"
	"errors"
	"fmt"

	"mesero/pkg/config"
	"mesero/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	BookingCollection  = "bookings"
	OverrideCollection = "date_overrides"
)

// CalendarRepository is the read path the rule chain depends on: per-date
// open/closed overrides and committed party-size sums. It performs no writes.
type CalendarRepository interface {
	FindOverride(ctx context.Context, date string) (*model.DateOverride, error)
	SumPartySizes(ctx context.Context, date string, excludeBookingID string) (int, error)
	SumPartySizesAt(ctx context.Context, date string, timeOfDay string, excludeBookingID string) (int, error)
}

type mongoCalendarRepository struct {
	cfg       *config.Config
	bookings  *mongo.Collection
	overrides *mongo.Collection
}

func NewMongoCalendarRepository(cfg *config.Config) CalendarRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCalendarRepository{
		cfg:       cfg,
		bookings:  db.Collection(BookingCollection),
		overrides: db.Collection(OverrideCollection),
	}
}

func (r *mongoCalendarRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoCalendarRepository) FindOverride(ctx context.Context, date string) (*model.DateOverride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var override model.DateOverride
	err := r.overrides.FindOne(ctx, bson.M{"_id": date}).Decode(&override)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find date override: %w", err)
	}

	return &override, nil
}

func (r *mongoCalendarRepository) SumPartySizes(ctx context.Context, date string, excludeBookingID string) (int, error) {
	return r.sumPartySizes(ctx, r.committedFilter(date, "", excludeBookingID))
}

func (r *mongoCalendarRepository) SumPartySizesAt(ctx context.Context, date string, timeOfDay string, excludeBookingID string) (int, error) {
	return r.sumPartySizes(ctx, r.committedFilter(date, timeOfDay, excludeBookingID))
}

// committedFilter matches bookings that hold seats: anything not cancelled.
func (r *mongoCalendarRepository) committedFilter(date string, timeOfDay string, excludeBookingID string) bson.M {
	filter := bson.M{
		"reservation_date": date,
		"status":           bson.M{"$ne": model.StatusCancelled},
	}
	if timeOfDay != "" {
		filter["reservation_time"] = timeOfDay
	}
	if excludeBookingID != "" {
		filter["_id"] = bson.M{"$ne": excludeBookingID}
	}
	return filter
}

func (r *mongoCalendarRepository) sumPartySizes(ctx context.Context, filter bson.M) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$party_size"},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum party sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode party size sum: %w", err)
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
