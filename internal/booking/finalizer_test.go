package booking

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mesero/internal/conversation"
	"mesero/pkg/config"
	mongotx "mesero/pkg/db/mongo"
	apperrors "mesero/pkg/errors"
	"mesero/pkg/logger"
	"mesero/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mock booking repository for testing
type mockBookingRepository struct {
	insertFunc func(ctx context.Context, booking *model.Booking) error
	inserted   []*model.Booking
}

func (m *mockBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, booking)
	}
	m.inserted = append(m.inserted, booking)
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

// Mock lock repository for testing
type mockLockRepository struct {
	acquireFunc func(ctx context.Context, lockID string, ttl time.Duration) error
	releases    []string
}

func (m *mockLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, lockID, ttl)
	}
	return nil
}

func (m *mockLockRepository) Release(ctx context.Context, lockID string) error {
	m.releases = append(m.releases, lockID)
	return nil
}

// Mock calendar repository for testing
type mockCalendarRepository struct {
	sumPartySizesFunc   func(ctx context.Context, date string, excludeBookingID string) (int, error)
	sumPartySizesAtFunc func(ctx context.Context, date string, timeOfDay string, excludeBookingID string) (int, error)
}

func (m *mockCalendarRepository) FindOverride(ctx context.Context, date string) (*model.DateOverride, error) {
	return nil, nil
}

func (m *mockCalendarRepository) SumPartySizes(ctx context.Context, date string, excludeBookingID string) (int, error) {
	if m.sumPartySizesFunc != nil {
		return m.sumPartySizesFunc(ctx, date, excludeBookingID)
	}
	return 0, nil
}

func (m *mockCalendarRepository) SumPartySizesAt(ctx context.Context, date string, timeOfDay string, excludeBookingID string) (int, error) {
	if m.sumPartySizesAtFunc != nil {
		return m.sumPartySizesAtFunc(ctx, date, timeOfDay, excludeBookingID)
	}
	return 0, nil
}

// Mock event publisher for testing
type mockEventPublisher struct {
	publishFunc func(ctx context.Context, booking *model.Booking) error
	published   []*model.Booking
}

func (m *mockEventPublisher) PublishBookingCreated(ctx context.Context, booking *model.Booking) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, booking)
	}
	m.published = append(m.published, booking)
	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		SlotCapacity: 30,
		DayCapacity:  120,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
	}
}

func completeDraft() *conversation.Draft {
	return &conversation.Draft{
		Phone:        "612345678",
		CustomerName: "María García",
		Date:         "2026-06-13",
		Time:         "14:00",
		PartySize:    4,
		Rice:         &model.RiceChoice{Type: "Paella Valenciana", Servings: 4},
	}
}

// events is the interface, not the mock: a nil here must reach the finalizer
// as a nil interface so its no-publisher guard actually engages.
func newTestFinalizer(repo *mockBookingRepository, locks *mockLockRepository, calendar *mockCalendarRepository, events EventPublisher) *Finalizer {
	cfg := newTestConfig()
	return NewFinalizer(cfg, repo, locks, calendar, NewBookingValidator(cfg.Log), events)
}

func TestFinalizeCommitsBooking(t *testing.T) {
	repo := &mockBookingRepository{}
	locks := &mockLockRepository{}
	events := &mockEventPublisher{}
	f := newTestFinalizer(repo, locks, &mockCalendarRepository{}, events)

	id, err := f.Finalize(context.Background(), completeDraft())
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if id == "" {
		t.Fatal("Finalize returned empty booking id")
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d bookings, want 1", len(repo.inserted))
	}
	booking := repo.inserted[0]
	if booking.ID != id {
		t.Errorf("returned id %q does not match inserted booking id %q", id, booking.ID)
	}
	if booking.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", booking.Status, model.StatusPending)
	}
	if booking.RiceType == nil || *booking.RiceType != "Paella Valenciana" {
		t.Errorf("rice type = %v, want Paella Valenciana", booking.RiceType)
	}
	if booking.RiceServings == nil || *booking.RiceServings != 4 {
		t.Errorf("rice servings = %v, want 4", booking.RiceServings)
	}

	if len(events.published) != 1 {
		t.Errorf("published %d events, want 1", len(events.published))
	}
	if len(locks.releases) != 1 || locks.releases[0] != "booking_lock_2026-06-13_14:00" {
		t.Errorf("lock releases = %v, want the slot lock released once", locks.releases)
	}
}

func TestFinalizeDeclinedRiceOmitsRiceFields(t *testing.T) {
	repo := &mockBookingRepository{}
	f := newTestFinalizer(repo, &mockLockRepository{}, &mockCalendarRepository{}, nil)

	draft := completeDraft()
	draft.Rice = &model.RiceChoice{Declined: true}

	if _, err := f.Finalize(context.Background(), draft); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	booking := repo.inserted[0]
	if booking.RiceType != nil || booking.RiceServings != nil {
		t.Errorf("declined rice stored as type=%v servings=%v, want both nil", booking.RiceType, booking.RiceServings)
	}
}

func TestFinalizeWithoutPublisherCommits(t *testing.T) {
	repo := &mockBookingRepository{}
	f := newTestFinalizer(repo, &mockLockRepository{}, &mockCalendarRepository{}, nil)

	id, err := f.Finalize(context.Background(), completeDraft())
	if err != nil {
		t.Fatalf("Finalize without a publisher returned error: %v", err)
	}
	if id == "" || len(repo.inserted) != 1 {
		t.Error("booking must commit normally when no event publisher is wired")
	}
}

func TestFinalizeIncompleteDraftIsInvariantViolation(t *testing.T) {
	repo := &mockBookingRepository{}
	f := newTestFinalizer(repo, &mockLockRepository{}, &mockCalendarRepository{}, nil)

	draft := completeDraft()
	draft.Time = ""

	_, err := f.Finalize(context.Background(), draft)
	if !apperrors.HasCode(err, apperrors.CodeInvariant) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeInvariant)
	}
	if len(repo.inserted) != 0 {
		t.Error("incomplete draft must never be inserted")
	}
}

func TestFinalizeLockHeldIsUnavailable(t *testing.T) {
	locks := &mockLockRepository{
		acquireFunc: func(ctx context.Context, lockID string, ttl time.Duration) error {
			return ErrLockHeld
		},
	}
	repo := &mockBookingRepository{}
	f := newTestFinalizer(repo, locks, &mockCalendarRepository{}, nil)

	_, err := f.Finalize(context.Background(), completeDraft())
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeUnavailable)
	}
	if len(repo.inserted) != 0 {
		t.Error("no insert may happen while the slot lock is held elsewhere")
	}
}

func TestFinalizeDayCapacityRaceIsConflict(t *testing.T) {
	calendar := &mockCalendarRepository{
		sumPartySizesFunc: func(ctx context.Context, date string, excludeBookingID string) (int, error) {
			return 118, nil // 118 + 4 > 120
		},
	}
	repo := &mockBookingRepository{}
	f := newTestFinalizer(repo, &mockLockRepository{}, calendar, nil)

	_, err := f.Finalize(context.Background(), completeDraft())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeConflict)
	}
	if len(repo.inserted) != 0 {
		t.Error("a capacity conflict must abort before the insert")
	}
}

func TestFinalizeSlotCapacityRaceIsConflict(t *testing.T) {
	calendar := &mockCalendarRepository{
		sumPartySizesAtFunc: func(ctx context.Context, date string, timeOfDay string, excludeBookingID string) (int, error) {
			return 28, nil // 28 + 4 > 30
		},
	}
	repo := &mockBookingRepository{}
	locks := &mockLockRepository{}
	f := newTestFinalizer(repo, locks, calendar, nil)

	_, err := f.Finalize(context.Background(), completeDraft())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeConflict)
	}
	if len(locks.releases) != 1 {
		t.Error("the slot lock must be released even when the transaction aborts")
	}
}

func TestFinalizeInsertFailurePropagates(t *testing.T) {
	repo := &mockBookingRepository{
		insertFunc: func(ctx context.Context, booking *model.Booking) error {
			return errors.New("socket timeout")
		},
	}
	f := newTestFinalizer(repo, &mockLockRepository{}, &mockCalendarRepository{}, nil)

	_, err := f.Finalize(context.Background(), completeDraft())
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeInternal)
	}
}

func TestFinalizePublishFailureDoesNotFailBooking(t *testing.T) {
	events := &mockEventPublisher{
		publishFunc: func(ctx context.Context, booking *model.Booking) error {
			return errors.New("kafka: broker unreachable")
		},
	}
	f := newTestFinalizer(&mockBookingRepository{}, &mockLockRepository{}, &mockCalendarRepository{}, events)

	id, err := f.Finalize(context.Background(), completeDraft())
	if err != nil {
		t.Fatalf("Finalize returned error despite committed booking: %v", err)
	}
	if id == "" {
		t.Error("booking id must be returned even when the event publish fails")
	}
}
