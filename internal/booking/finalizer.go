package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mesero/internal/availability"
	"mesero/internal/conversation"
	"mesero/pkg/config"
	apperrors "mesero/pkg/errors"
	"mesero/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockTTL = 30 * time.Second

// EventPublisher announces committed bookings to downstream consumers.
// Delivery is best-effort: a publish failure never rolls back a booking.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *model.Booking) error
}

// Finalizer commits a complete conversation draft as a booking record.
//
// The validator's capacity check is advisory only; two conversations can
// both pass it and race to this point. The race closes here: an advisory
// per-slot lock serializes finalizations, and the capacity sums are re-read
// inside the insert transaction before anything commits.
type Finalizer struct {
	cfg       *config.Config
	repo      BookingRepository
	locks     LockRepository
	calendar  availability.CalendarRepository
	validator *BookingValidator
	events    EventPublisher
}

func NewFinalizer(
	cfg *config.Config,
	repo BookingRepository,
	locks LockRepository,
	calendar availability.CalendarRepository,
	validator *BookingValidator,
	events EventPublisher,
) *Finalizer {
	return &Finalizer{
		cfg:       cfg,
		repo:      repo,
		locks:     locks,
		calendar:  calendar,
		validator: validator,
		events:    events,
	}
}

// Finalize packages the draft, re-checks capacity atomically with the
// insert, and returns the new booking id.
func (f *Finalizer) Finalize(ctx context.Context, draft *conversation.Draft) (string, error) {
	booking := packageDraft(draft)

	if err := f.validator.ValidateBooking(booking); err != nil {
		return "", apperrors.Invariant(fmt.Sprintf("draft reached finalization incomplete: %v", err))
	}

	lockID := fmt.Sprintf("booking_lock_%s_%s", booking.Date, booking.Time)
	if err := f.locks.Acquire(ctx, lockID, lockTTL); err != nil {
		if errors.Is(err, ErrLockHeld) {
			return "", apperrors.Unavailable("booking slot")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}
	defer func() {
		if err := f.locks.Release(context.WithoutCancel(ctx), lockID); err != nil {
			f.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
		}
	}()

	err := f.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := f.recheckCapacity(sessCtx, booking); err != nil {
			return err
		}
		if err := f.repo.Insert(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to store booking", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	f.cfg.Log.Info("Booking committed",
		"booking_id", booking.ID,
		"date", booking.Date,
		"time", booking.Time,
		"party_size", booking.PartySize,
	)

	f.publishCreated(booking)

	return booking.ID, nil
}

// recheckCapacity repeats the capacity sums inside the transaction. The
// advisory verdict from validation may be stale by now.
func (f *Finalizer) recheckCapacity(ctx context.Context, booking *model.Booking) error {
	daySum, err := f.calendar.SumPartySizes(ctx, booking.Date, "")
	if err != nil {
		return apperrors.Internal("Failed to re-check day capacity", err)
	}
	if daySum+booking.PartySize > f.cfg.DayCapacity {
		return apperrors.Conflict(fmt.Sprintf("day %s is full: %v", booking.Date, ErrCapacityExceeded))
	}

	slotSum, err := f.calendar.SumPartySizesAt(ctx, booking.Date, booking.Time, "")
	if err != nil {
		return apperrors.Internal("Failed to re-check slot capacity", err)
	}
	if slotSum+booking.PartySize > f.cfg.SlotCapacity {
		return apperrors.Conflict(fmt.Sprintf("slot %s %s is full: %v", booking.Date, booking.Time, ErrCapacityExceeded))
	}
	return nil
}

// publishCreated emits the booking.created event. Best-effort: the booking
// is already committed, so failures are logged and swallowed.
func (f *Finalizer) publishCreated(booking *model.Booking) {
	if f.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := f.events.PublishBookingCreated(ctx, booking); err != nil {
		f.cfg.Log.Warn("Failed to publish booking.created event",
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func packageDraft(draft *conversation.Draft) *model.Booking {
	booking := &model.Booking{
		ID:           uuid.New().String(),
		CustomerName: draft.CustomerName,
		ContactPhone: draft.Phone,
		Date:         draft.Date,
		Time:         draft.Time,
		PartySize:    draft.PartySize,
		Comment:      draft.Comment,
		HighChairs:   draft.HighChairs,
		Strollers:    draft.Strollers,
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	if draft.Rice != nil && !draft.Rice.Declined {
		riceType := draft.Rice.Type
		servings := draft.Rice.Servings
		booking.RiceType = &riceType
		booking.RiceServings = &servings
	}

	return booking
}
