package availability

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"mesero/pkg/config"
	"mesero/pkg/logger"
	"mesero/pkg/model"
)

// Mock calendar repository for testing
type mockCalendarRepository struct {
	findOverrideFunc    func(ctx context.Context, date string) (*model.DateOverride, error)
	sumPartySizesFunc   func(ctx context.Context, date string, excludeBookingID string) (int, error)
	sumPartySizesAtFunc func(ctx context.Context, date string, timeOfDay string, excludeBookingID string) (int, error)
}

func (m *mockCalendarRepository) FindOverride(ctx context.Context, date string) (*model.DateOverride, error) {
	if m.findOverrideFunc != nil {
		return m.findOverrideFunc(ctx, date)
	}
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

func newTestConfig() *config.Config {
	return &config.Config{
		RestaurantPhone:    "+34961234567",
		MaxAdvanceDays:     35,
		ClosedWeekdays:     []string{"monday", "tuesday"},
		SpecialDates:       []string{"24/12", "25/12", "31/12", "01/01", "06/01"},
		OpeningTime:        "13:00",
		ClosingTime:        "15:30",
		SlotIntervalMin:    30,
		SlotCapacity:       30,
		DayCapacity:        120,
		MaxOnlinePartySize: 20,
		ReadTimeout:        5 * time.Second,
		Location:           time.UTC,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
	}
}

// newTestValidator pins "today" to Wednesday 2026-06-10 so weekday and
// distance expectations stay stable.
func newTestValidator(t *testing.T, repo CalendarRepository) *Validator {
	t.Helper()
	v, err := NewValidator(newTestConfig(), repo)
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	v.now = func() time.Time {
		return time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return v
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestValidate_Deterministic(t *testing.T) {
	v := newTestValidator(t, &mockCalendarRepository{})
	req := Request{Date: "2026-06-13", Time: strPtr("14:00"), PartySize: intPtr(4)}

	first, err := v.Validate(context.Background(), req)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	second, err := v.Validate(context.Background(), req)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if *first != *second {
		t.Errorf("expected identical verdicts, got %+v and %+v", first, second)
	}
	if !first.Accepted || first.Reason != ReasonOk {
		t.Errorf("expected Ok verdict, got %+v", first)
	}
}

func TestValidate_SpecialDateBeatsForceOpen(t *testing.T) {
	repo := &mockCalendarRepository{
		findOverrideFunc: func(ctx context.Context, date string) (*model.DateOverride, error) {
			return &model.DateOverride{Date: date, ForceOpen: true}, nil
		},
	}
	v := newTestValidator(t, repo)

	verdict, err := v.Validate(context.Background(), Request{Date: "2026-12-24"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if verdict.Accepted {
		t.Fatal("expected rejection on a special date")
	}
	if verdict.Reason != ReasonSpecialDate {
		t.Errorf("expected reason %q, got %q", ReasonSpecialDate, verdict.Reason)
	}
}

func TestValidate_SpecialDateIsYearAgnostic(t *testing.T) {
	v := newTestValidator(t, &mockCalendarRepository{})

	verdict, err := v.Validate(context.Background(), Request{Date: "2027-01-06"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if verdict.Reason != ReasonSpecialDate {
		t.Errorf("expected reason %q, got %q", ReasonSpecialDate, verdict.Reason)
	}
}

func TestValidate_SameDay(t *testing.T) {
	v := newTestValidator(t, &mockCalendarRepository{})

	verdict, err := v.Validate(context.Background(), Request{Date: "2026-06-10"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if verdict.Reason != ReasonSameDay {
		t.Errorf("expected reason %q, got %q", ReasonSameDay, verdict.Reason)
	}
	if verdict.UserMessage == "" {
		t.Error("expected a contact-channel message for same-day requests")
	}
}

func TestValidate_ClosedDayPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		override   *model.DateOverride
		wantReason ReasonCode
	}{
		{
			name:       "weekly closed monday",
			date:       "2026-06-15",
			wantReason: ReasonClosedDay,
		},
		{
			name:       "force open beats weekly closure",
			date:       "2026-06-15",
			override:   &model.DateOverride{ForceOpen: true},
			wantReason: ReasonOk,
		},
		{
			name:       "force closed beats open weekday",
			date:       "2026-06-13",
			override:   &model.DateOverride{ForceClosed: true},
			wantReason: ReasonClosedDay,
		},
		{
			name:       "open saturday with no override",
			date:       "2026-06-13",
			wantReason: ReasonOk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCalendarRepository{
				findOverrideFunc: func(ctx context.Context, date string) (*model.DateOverride, error) {
					return tt.override, nil
				},
			}
			v := newTestValidator(t, repo)

			verdict, err := v.Validate(context.Background(), Request{Date: tt.date})
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, verdict.Reason)
			}
		})
	}
}

func TestValidate_ClosedDayEnumeratesOpenWeekdays(t *testing.T) {
	v := newTestValidator(t, &mockCalendarRepository{})

	verdict, err := v.Validate(context.Background(), Request{Date: "2026-06-15"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if verdict.Reason != ReasonClosedDay {
		t.Fatalf("expected reason %q, got %q", ReasonClosedDay, verdict.Reason)
	}
	for _, day := range []string{"miércoles", "jueves", "viernes", "sábado", "domingo"} {
		if !strings.Contains(verdict.UserMessage, day) {
			t.Errorf("expected open weekday %q in message %q", day, verdict.UserMessage)
		}
	}
}

func TestValidate_BookingWindowBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		wantReason ReasonCode
	}{
		{"distance equals max accepted", "2026-07-15", ReasonOk},
		{"distance max plus one rejected", "2026-07-16", ReasonTooFarAhead},
		{"yesterday is past not far ahead", "2026-06-09", ReasonPastDate},
		{"long past date stays past", "2026-04-01", ReasonPastDate},
		{"past closed weekday is past not closed", "2026-06-08", ReasonPastDate},
		{"closed weekday beyond window is closed", "2026-12-07", ReasonClosedDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t, &mockCalendarRepository{})

			verdict, err := v.Validate(context.Background(), Request{Date: tt.date})
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, verdict.Reason)
			}
		})
	}
}

func TestValidate_PastDateSkipsOverrideLookup(t *testing.T) {
	repo := &mockCalendarRepository{
		findOverrideFunc: func(ctx context.Context, date string) (*model.DateOverride, error) {
			t.Errorf("override lookup for past date %s", date)
			return nil, nil
		},
	}
	v := newTestValidator(t, repo)

	verdict, err := v.Validate(context.Background(), Request{Date: "2026-06-09"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if verdict.Reason != ReasonPastDate {
		t.Errorf("expected reason %q, got %q", ReasonPastDate, verdict.Reason)
	}
}

func TestValidate_TimeWindow(t *testing.T) {
	tests := []struct {
		name            string
		timeOfDay       string
		wantReason      ReasonCode
		wantAlternative string
	}{
		{"before opening", "12:00", ReasonNoSlot, "13:00"},
		{"at opening", "13:00", ReasonOk, ""},
		{"mid service", "14:30", ReasonOk, ""},
		{"at closing", "15:30", ReasonOk, ""},
		{"after closing", "16:00", ReasonNoSlot, "15:30"},
		{"off the seating grid", "14:10", ReasonNoSlot, "14:00"},
		{"just before a slot", "14:29", ReasonNoSlot, "14:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t, &mockCalendarRepository{})

			verdict, err := v.Validate(context.Background(), Request{Date: "2026-06-13", Time: strPtr(tt.timeOfDay)})
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, verdict.Reason)
			}
			if verdict.SuggestedAlternative != tt.wantAlternative {
				t.Errorf("expected alternative %q, got %q", tt.wantAlternative, verdict.SuggestedAlternative)
			}
		})
	}
}

func TestValidate_Capacity(t *testing.T) {
	tests := []struct {
		name       string
		partySize  int
		daySum     int
		slotSum    int
		wantReason ReasonCode
	}{
		{"fits empty day", 4, 0, 0, ReasonOk},
		{"fills slot exactly", 4, 4, 26, ReasonOk},
		{"slot overflow", 5, 5, 26, ReasonOverCapacity},
		{"day full", 4, 117, 0, ReasonNoSlot},
		{"party beyond online limit", 21, 0, 0, ReasonOverCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCalendarRepository{
				sumPartySizesFunc: func(ctx context.Context, date string, exclude string) (int, error) {
					return tt.daySum, nil
				},
				sumPartySizesAtFunc: func(ctx context.Context, date string, timeOfDay string, exclude string) (int, error) {
					return tt.slotSum, nil
				},
			}
			v := newTestValidator(t, repo)

			verdict, err := v.Validate(context.Background(), Request{
				Date:      "2026-06-13",
				Time:      strPtr("14:00"),
				PartySize: intPtr(tt.partySize),
			})
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, verdict.Reason)
			}
		})
	}
}

func TestValidate_CapacityExcludesBookingBeingModified(t *testing.T) {
	var seenExclude string
	repo := &mockCalendarRepository{
		sumPartySizesAtFunc: func(ctx context.Context, date string, timeOfDay string, exclude string) (int, error) {
			seenExclude = exclude
			return 0, nil
		},
	}
	v := newTestValidator(t, repo)

	_, err := v.Validate(context.Background(), Request{
		Date:             "2026-06-13",
		Time:             strPtr("14:00"),
		PartySize:        intPtr(4),
		ExcludeBookingID: "booking-42",
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if seenExclude != "booking-42" {
		t.Errorf("expected exclude id to reach the repository, got %q", seenExclude)
	}
}

func TestValidate_InvalidDate(t *testing.T) {
	v := newTestValidator(t, &mockCalendarRepository{})

	if _, err := v.Validate(context.Background(), Request{Date: "13/06/2026"}); err == nil {
		t.Error("expected error for non-canonical date format")
	}
}
