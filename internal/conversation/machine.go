package conversation

import (
	"context"
	"time"

	"mesero/internal/availability"
	"mesero/internal/extractor"
	"mesero/pkg/config"
	apperrors "mesero/pkg/errors"
	"mesero/pkg/model"
)

// AvailabilityChecker is the rule chain the machine re-validates date, time
// and party size against on every change.
type AvailabilityChecker interface {
	Validate(ctx context.Context, req availability.Request) (*availability.Verdict, error)
}

// BookingFinalizer commits a complete draft and returns the booking id.
// Implementations own the commit-time capacity re-check.
type BookingFinalizer interface {
	Finalize(ctx context.Context, draft *Draft) (string, error)
}

// Machine owns the per-turn algorithm: merge extracted fields into the
// draft, re-validate what changed, and emit exactly one outbound message
// per turn, never a compound question.
type Machine struct {
	cfg       *config.Config
	store     *Store
	checker   AvailabilityChecker
	finalizer BookingFinalizer
	now       func() time.Time
}

func NewMachine(cfg *config.Config, store *Store, checker AvailabilityChecker, finalizer BookingFinalizer) *Machine {
	return &Machine{
		cfg:       cfg,
		store:     store,
		checker:   checker,
		finalizer: finalizer,
		now:       time.Now,
	}
}

// HandleTurn processes one customer turn and returns the single reply to
// send back. An extraction with nothing usable re-asks the pending question
// instead of failing the conversation.
func (m *Machine) HandleTurn(ctx context.Context, phone string, fields *extractor.Fields) (*Reply, error) {
	draft := m.store.GetOrCreate(phone)
	draft.mu.Lock()
	defer draft.mu.Unlock()

	draft.LastActivity = m.now()

	if fields.Cancelled {
		draft.State = StateAbandoned
		m.store.Remove(phone)
		m.cfg.Log.Info("Conversation cancelled by customer", "phone", phone)
		return m.cancelledReply(), nil
	}

	if draft.State == StateAwaitingConfirmation {
		return m.confirmationTurn(ctx, draft, fields)
	}
	return m.collectingTurn(ctx, draft, fields)
}

func (m *Machine) collectingTurn(ctx context.Context, draft *Draft, fields *extractor.Fields) (*Reply, error) {
	result := m.merge(draft, fields)

	if result.availabilityChanged {
		verdict, err := m.validateDraft(ctx, draft)
		if err != nil {
			result.revert(draft)
			m.cfg.Log.Error("Availability check failed", "phone", draft.Phone, "error", err)
			return &Reply{Text: "Estamos teniendo un problema técnico. ¿Me lo repites en un momento?"}, nil
		}
		if !verdict.Accepted {
			// A rejected candidate never advances the draft.
			result.revert(draft)
			return &Reply{Text: verdict.UserMessage}, nil
		}
	}

	if result.servingsBelowMinimum {
		draft.PendingSlot = extractor.SlotRice
		return m.minServingsReply(), nil
	}

	if slot, missing := draft.nextMissingSlot(); missing {
		draft.PendingSlot = slot
		return m.questionFor(draft, slot), nil
	}

	draft.State = StateAwaitingConfirmation
	draft.PendingSlot = ""
	return m.summaryReply(draft), nil
}

func (m *Machine) confirmationTurn(ctx context.Context, draft *Draft, fields *extractor.Fields) (*Reply, error) {
	if fields.Confirmed {
		return m.finalize(ctx, draft)
	}

	if fields.Declined {
		slots := correctedSlots(fields)
		if len(slots) == 0 {
			// The customer wants a change but did not say which; stay put
			// and ask, the draft keeps everything collected so far.
			return m.whichDetailReply(), nil
		}
		for _, slot := range slots {
			draft.clearSlot(slot)
		}
		draft.State = StateCollecting
		return m.collectingTurn(ctx, draft, fields)
	}

	if fields.Empty() {
		return m.summaryReply(draft), nil
	}

	// Edit without an explicit decline: reopen, merge and re-validate; a
	// still-complete draft comes straight back with a fresh summary.
	draft.State = StateCollecting
	return m.collectingTurn(ctx, draft, fields)
}

func (m *Machine) finalize(ctx context.Context, draft *Draft) (*Reply, error) {
	bookingID, err := m.finalizer.Finalize(ctx, draft)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInvariant) {
			// The machine let an incomplete draft reach confirmation.
			// Fatal for this conversation instance: log and start over.
			m.cfg.Log.Error("Draft invariant violation at finalization",
				"phone", draft.Phone,
				"error", err,
			)
			draft.State = StateAbandoned
			m.store.Remove(draft.Phone)
			return &Reply{Text: "Ha habido un problema con los datos de la reserva y tenemos que empezar de nuevo. ¿Para qué día te gustaría reservar?"}, nil
		}

		if apperrors.HasCode(err, apperrors.CodeConflict) {
			// Lost the commit-time capacity race. The slot is gone, the
			// rest of the draft survives.
			m.cfg.Log.Warn("Finalization lost capacity race",
				"phone", draft.Phone,
				"date", draft.Date,
				"time", draft.Time,
			)
			draft.clearSlot(extractor.SlotTime)
			draft.State = StateCollecting
			draft.PendingSlot = extractor.SlotTime
			return &Reply{Text: "Vaya, justo se nos ha llenado esa hora mientras confirmábamos. ¿Te va bien otra hora?"}, nil
		}

		// Store failure: the draft stays at confirmation so the customer
		// can simply confirm again.
		m.cfg.Log.Error("Failed to store booking", "phone", draft.Phone, "error", err)
		return m.storeFailureReply(), nil
	}

	draft.State = StateFinalized
	m.store.Remove(draft.Phone)
	m.cfg.Log.Info("Booking finalized",
		"phone", draft.Phone,
		"booking_id", bookingID,
		"date", draft.Date,
		"time", draft.Time,
		"party_size", draft.PartySize,
	)
	return m.finalizedReply(draft), nil
}

func (m *Machine) validateDraft(ctx context.Context, draft *Draft) (*availability.Verdict, error) {
	req := availability.Request{Date: draft.Date}
	if draft.Time != "" {
		req.Time = &draft.Time
	}
	if draft.PartySize > 0 {
		req.PartySize = &draft.PartySize
	}
	return m.checker.Validate(ctx, req)
}

// mergeResult records what one merge changed, with enough memory to revert
// the availability-relevant fields if validation rejects them.
type mergeResult struct {
	availabilityChanged  bool
	servingsBelowMinimum bool

	prevDate      string
	prevTime      string
	prevPartySize int
}

func (r *mergeResult) revert(draft *Draft) {
	draft.Date = r.prevDate
	draft.Time = r.prevTime
	draft.PartySize = r.prevPartySize
}

// merge folds one extraction into the draft. Accepting a value follows the
// confidence rules in Draft.acceptValue; merging an identical value twice is
// a no-op.
func (m *Machine) merge(draft *Draft, fields *extractor.Fields) *mergeResult {
	result := &mergeResult{
		prevDate:      draft.Date,
		prevTime:      draft.Time,
		prevPartySize: draft.PartySize,
	}

	// An explicit correction without a replacement value reopens the slot.
	for _, slot := range correctedSlots(fields) {
		if !slotProvided(fields, slot) {
			draft.clearSlot(slot)
		}
	}

	if f := fields.Date; f != nil {
		if draft.acceptValue(extractor.SlotDate, f.Confidence, fields.IsCorrection(extractor.SlotDate), draft.Date == "") {
			if draft.Date != f.Value {
				draft.Date = f.Value
				result.availabilityChanged = true
			}
			draft.confidence[extractor.SlotDate] = f.Confidence
		}
	}

	if f := fields.Time; f != nil {
		if draft.acceptValue(extractor.SlotTime, f.Confidence, fields.IsCorrection(extractor.SlotTime), draft.Time == "") {
			if draft.Time != f.Value {
				draft.Time = f.Value
				result.availabilityChanged = true
			}
			draft.confidence[extractor.SlotTime] = f.Confidence
		}
	}

	if f := fields.PartySize; f != nil {
		if draft.acceptValue(extractor.SlotPartySize, f.Confidence, fields.IsCorrection(extractor.SlotPartySize), draft.PartySize == 0) {
			if draft.PartySize != f.Value {
				draft.PartySize = f.Value
				result.availabilityChanged = true
			}
			draft.confidence[extractor.SlotPartySize] = f.Confidence
		}
	}

	if f := fields.Rice; f != nil {
		m.mergeRice(draft, fields, f, result)
	}

	if f := fields.HighChairs; f != nil {
		draft.HighChairs = f.Value
		draft.equipmentResolved = true
	}
	if f := fields.Strollers; f != nil {
		draft.Strollers = f.Value
		draft.equipmentResolved = true
	}

	if f := fields.CustomerName; f != nil {
		if draft.acceptValue(extractor.SlotName, f.Confidence, fields.IsCorrection(extractor.SlotName), draft.CustomerName == "") {
			draft.CustomerName = f.Value
			draft.confidence[extractor.SlotName] = f.Confidence
		}
	}

	if fields.Comment != "" {
		draft.Comment = fields.Comment
	}

	return result
}

func (m *Machine) mergeRice(draft *Draft, fields *extractor.Fields, f *extractor.RiceField, result *mergeResult) {
	if !draft.acceptValue(extractor.SlotRice, f.Confidence, fields.IsCorrection(extractor.SlotRice), draft.Rice == nil) {
		return
	}

	if f.Declined {
		draft.Rice = &model.RiceChoice{Declined: true}
		draft.confidence[extractor.SlotRice] = f.Confidence
		return
	}

	choice := draft.Rice
	if choice == nil || choice.Declined || choice.Type != f.Type {
		choice = &model.RiceChoice{Type: f.Type}
	}
	if f.Servings > 0 {
		if f.Servings < m.cfg.RiceMinServings {
			result.servingsBelowMinimum = true
		} else {
			choice.Servings = f.Servings
		}
	}
	draft.Rice = choice
	draft.confidence[extractor.SlotRice] = f.Confidence
}

func correctedSlots(fields *extractor.Fields) []extractor.Slot {
	all := []extractor.Slot{
		extractor.SlotDate, extractor.SlotPartySize, extractor.SlotTime,
		extractor.SlotRice, extractor.SlotEquipment, extractor.SlotName,
	}
	var slots []extractor.Slot
	for _, slot := range all {
		if fields.IsCorrection(slot) {
			slots = append(slots, slot)
		}
	}
	return slots
}

func slotProvided(fields *extractor.Fields, slot extractor.Slot) bool {
	switch slot {
	case extractor.SlotDate:
		return fields.Date != nil
	case extractor.SlotPartySize:
		return fields.PartySize != nil
	case extractor.SlotTime:
		return fields.Time != nil
	case extractor.SlotRice:
		return fields.Rice != nil
	case extractor.SlotEquipment:
		return fields.HighChairs != nil || fields.Strollers != nil
	case extractor.SlotName:
		return fields.CustomerName != nil
	}
	return false
}
