package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mesero/pkg/config"
	apperrors "mesero/pkg/errors"
	"mesero/pkg/model"
)

// Validator runs the ordered rule chain over a candidate request. It is a
// pure read path: no rule writes anything, and the same inputs against
// unchanged calendar data always produce the same verdict.
//
// The chain short-circuits: the first rule that produces a verdict wins,
// later rules never override an earlier rejection.
type Validator struct {
	cfg  *config.Config
	repo CalendarRepository

	specialDates   map[string]bool // "dd/MM", year-agnostic
	closedWeekdays map[time.Weekday]bool
	openingTime    time.Time // time-of-day only
	closingTime    time.Time

	now func() time.Time
}

type rule func(ctx context.Context, req Request, date time.Time) (*Verdict, error)

func NewValidator(cfg *config.Config, repo CalendarRepository) (*Validator, error) {
	opening, err := time.Parse(model.TimeLayout, cfg.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("invalid opening time %q: %w", cfg.OpeningTime, err)
	}
	closing, err := time.Parse(model.TimeLayout, cfg.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("invalid closing time %q: %w", cfg.ClosingTime, err)
	}

	specials := make(map[string]bool, len(cfg.SpecialDates))
	for _, d := range cfg.SpecialDates {
		specials[d] = true
	}

	closed := make(map[time.Weekday]bool, len(cfg.ClosedWeekdays))
	for _, name := range cfg.ClosedWeekdays {
		wd, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		closed[wd] = true
	}

	return &Validator{
		cfg:            cfg,
		repo:           repo,
		specialDates:   specials,
		closedWeekdays: closed,
		openingTime:    opening,
		closingTime:    closing,
		now:            func() time.Time { return time.Now().In(cfg.Location) },
	}, nil
}

// Validate runs the chain for one candidate. The returned error covers
// calendar store failures only; business rejections come back as verdicts.
func (v *Validator) Validate(ctx context.Context, req Request) (*Verdict, error) {
	date, err := time.ParseInLocation(model.DateLayout, req.Date, v.cfg.Location)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid date %q", req.Date))
	}

	rules := []rule{
		v.specialDateRule,
		v.sameDayRule,
		v.pastDateRule,
		v.closedDayRule,
		v.bookingWindowRule,
		v.timeWindowRule,
		v.capacityRule,
	}

	for _, r := range rules {
		verdict, err := r(ctx, req, date)
		if err != nil {
			return nil, err
		}
		if verdict != nil {
			v.cfg.Log.Debug("Availability verdict",
				"date", req.Date,
				"accepted", verdict.Accepted,
				"reason", verdict.Reason,
			)
			return verdict, nil
		}
	}

	return accept(), nil
}

// specialDateRule rejects a fixed, year-agnostic set of dates. Evaluated
// first: force-open overrides do not apply to these days.
func (v *Validator) specialDateRule(_ context.Context, _ Request, date time.Time) (*Verdict, error) {
	if v.specialDates[date.Format("02/01")] {
		return reject(ReasonSpecialDate, msgSpecialDate(userDate(date))), nil
	}
	return nil, nil
}

func (v *Validator) sameDayRule(_ context.Context, _ Request, date time.Time) (*Verdict, error) {
	if v.dayDistance(date) == 0 {
		return reject(ReasonSameDay, msgSameDay(v.cfg.RestaurantPhone)), nil
	}
	return nil, nil
}

// pastDateRule rejects dates strictly before today. It runs ahead of the
// closed-day rule: a past date is past no matter what the calendar says, and
// skipping the override lookup avoids a read that cannot change the outcome.
func (v *Validator) pastDateRule(_ context.Context, _ Request, date time.Time) (*Verdict, error) {
	if v.dayDistance(date) < 0 {
		return reject(ReasonPastDate, msgPastDate(userDate(date))), nil
	}
	return nil, nil
}

// closedDayRule resolves open/closed with precedence: force-open override,
// force-closed override, weekly schedule.
func (v *Validator) closedDayRule(ctx context.Context, req Request, date time.Time) (*Verdict, error) {
	override, err := v.repo.FindOverride(ctx, req.Date)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve calendar override", err)
	}

	if override != nil {
		if override.ForceOpen {
			return nil, nil
		}
		if override.ForceClosed {
			return reject(ReasonClosedDay, msgClosedDay(userDate(date), v.openWeekdayNames())), nil
		}
	}

	if v.closedWeekdays[date.Weekday()] {
		return reject(ReasonClosedDay, msgClosedDay(userDate(date), v.openWeekdayNames())), nil
	}
	return nil, nil
}

// bookingWindowRule compares the day distance against the advance window.
// Past dates were already rejected by pastDateRule, so only the far side is
// left. The maximum itself is bookable.
func (v *Validator) bookingWindowRule(_ context.Context, _ Request, date time.Time) (*Verdict, error) {
	if v.dayDistance(date) > v.cfg.MaxAdvanceDays {
		return reject(ReasonTooFarAhead, msgTooFarAhead(v.cfg.MaxAdvanceDays)), nil
	}
	return nil, nil
}

func (v *Validator) timeWindowRule(_ context.Context, req Request, _ time.Time) (*Verdict, error) {
	if req.Time == nil {
		return nil, nil
	}

	t, err := time.Parse(model.TimeLayout, *req.Time)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid time %q", *req.Time))
	}

	if t.Before(v.openingTime) {
		verdict := reject(ReasonNoSlot, msgTooEarly(v.cfg.OpeningTime))
		verdict.SuggestedAlternative = v.cfg.OpeningTime
		return verdict, nil
	}
	if t.After(v.closingTime) {
		verdict := reject(ReasonNoSlot, msgTooLate(v.cfg.ClosingTime))
		verdict.SuggestedAlternative = v.cfg.ClosingTime
		return verdict, nil
	}

	// Seatings run on a fixed grid from opening; capacity sums group by the
	// exact time string, so off-grid times must be snapped before they count.
	if interval := v.cfg.SlotIntervalMin; interval > 0 {
		offset := int(t.Sub(v.openingTime).Minutes())
		if offset%interval != 0 {
			snapped := v.openingTime.Add(time.Duration(offset-offset%interval) * time.Minute)
			slot := snapped.Format(model.TimeLayout)
			verdict := reject(ReasonNoSlot, msgOffGridTime(interval, slot))
			verdict.SuggestedAlternative = slot
			return verdict, nil
		}
	}
	return nil, nil
}

// capacityRule sums committed party sizes for the slot and the day. The check
// here is advisory: the finalizer re-runs it inside a transaction before the
// insert commits.
func (v *Validator) capacityRule(ctx context.Context, req Request, date time.Time) (*Verdict, error) {
	if req.PartySize == nil {
		return nil, nil
	}
	party := *req.PartySize

	if party > v.cfg.MaxOnlinePartySize {
		return reject(ReasonOverCapacity, msgPartyTooLarge(v.cfg.RestaurantPhone)), nil
	}

	daySum, err := v.repo.SumPartySizes(ctx, req.Date, req.ExcludeBookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to sum day capacity", err)
	}
	if daySum+party > v.cfg.DayCapacity {
		return reject(ReasonNoSlot, msgDayFull(userDate(date))), nil
	}

	if req.Time != nil {
		slotSum, err := v.repo.SumPartySizesAt(ctx, req.Date, *req.Time, req.ExcludeBookingID)
		if err != nil {
			return nil, apperrors.Internal("Failed to sum slot capacity", err)
		}
		if slotSum+party > v.cfg.SlotCapacity {
			return reject(ReasonOverCapacity, msgSlotFull(*req.Time)), nil
		}
	}
	return nil, nil
}

// dayDistance is the signed number of calendar days from today to date,
// computed on date components so DST transitions cannot skew it.
func (v *Validator) dayDistance(date time.Time) int {
	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candidate := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(candidate.Sub(today).Hours() / 24)
}

func (v *Validator) openWeekdayNames() []string {
	order := []time.Weekday{
		time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
		time.Monday, time.Tuesday,
	}
	// Present in customer-natural order starting from midweek so the list reads
	// "miércoles a domingo" for the default schedule.
	var names []string
	for _, wd := range order {
		if !v.closedWeekdays[wd] {
			names = append(names, spanishWeekdays[wd])
		}
	}
	return names
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "monday", "lunes":
		return time.Monday, nil
	case "tuesday", "martes":
		return time.Tuesday, nil
	case "wednesday", "miercoles", "miércoles":
		return time.Wednesday, nil
	case "thursday", "jueves":
		return time.Thursday, nil
	case "friday", "viernes":
		return time.Friday, nil
	case "saturday", "sabado", "sábado":
		return time.Saturday, nil
	case "sunday", "domingo":
		return time.Sunday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
