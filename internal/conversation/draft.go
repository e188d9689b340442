package conversation

import (
	"sync"
	"time"

	"mesero/internal/extractor"
	"mesero/pkg/model"
)

// State is the lifecycle position of one conversation draft.
type State string

const (
	StateCollecting           State = "collecting"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateFinalized            State = "finalized"
	StateAbandoned            State = "abandoned"
)

// Draft is the per-conversation booking accumulator. One draft exists per
// active customer phone; it is mutated once per turn under its own lock.
type Draft struct {
	mu sync.Mutex

	Phone        string // 9-digit national contact number
	CustomerName string
	Date         string // yyyy-MM-dd, empty while uncollected
	Time         string // HH:mm, empty while uncollected
	PartySize    int    // 0 while uncollected
	Rice         *model.RiceChoice
	HighChairs   int
	Strollers    int
	Comment      string

	State        State
	PendingSlot  extractor.Slot
	LastActivity time.Time
	CreatedAt    time.Time

	// equipmentResolved is set once the customer answered the equipment
	// question, including with zero counts.
	equipmentResolved bool

	// confidence remembers how sure the extractor was about each accepted
	// slot; a lower-confidence re-extraction never silently overwrites.
	confidence map[extractor.Slot]float64
}

func newDraft(phone string, now time.Time) *Draft {
	return &Draft{
		Phone:        phone,
		State:        StateCollecting,
		LastActivity: now,
		CreatedAt:    now,
		confidence:   make(map[extractor.Slot]float64),
	}
}

// nextMissingSlot walks the fixed priority order and returns the first slot
// still uncollected, or false when the draft is complete.
func (d *Draft) nextMissingSlot() (extractor.Slot, bool) {
	switch {
	case d.Date == "":
		return extractor.SlotDate, true
	case d.PartySize == 0:
		return extractor.SlotPartySize, true
	case d.Time == "":
		return extractor.SlotTime, true
	case !d.riceResolved():
		return extractor.SlotRice, true
	case !d.equipmentResolved:
		return extractor.SlotEquipment, true
	case d.CustomerName == "":
		return extractor.SlotName, true
	}
	return "", false
}

// riceResolved: the slot is terminal once declined, or once a named rice has
// a serving count. A named rice without servings still needs a turn.
func (d *Draft) riceResolved() bool {
	if d.Rice == nil {
		return false
	}
	return d.Rice.Declined || d.Rice.Servings > 0
}

// clearSlot reopens one slot for re-collection after a correction.
func (d *Draft) clearSlot(slot extractor.Slot) {
	switch slot {
	case extractor.SlotDate:
		d.Date = ""
	case extractor.SlotPartySize:
		d.PartySize = 0
	case extractor.SlotTime:
		d.Time = ""
	case extractor.SlotRice:
		d.Rice = nil
	case extractor.SlotEquipment:
		d.HighChairs = 0
		d.Strollers = 0
		d.equipmentResolved = false
	case extractor.SlotName:
		d.CustomerName = ""
	}
	delete(d.confidence, slot)
}

// acceptValue reports whether a newly extracted value may replace whatever
// the slot holds: always when the slot is empty or the turn is an explicit
// correction, otherwise only when the extractor is at least as confident as
// it was for the stored value.
func (d *Draft) acceptValue(slot extractor.Slot, newConfidence float64, isCorrection bool, slotEmpty bool) bool {
	if slotEmpty || isCorrection {
		return true
	}
	return newConfidence >= d.confidence[slot]
}
