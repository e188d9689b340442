package availability

// ReasonCode is the machine-readable outcome of one validation chain run.
type ReasonCode string

const (
	ReasonOk           ReasonCode = "ok"
	ReasonSpecialDate  ReasonCode = "special_date"
	ReasonClosedDay    ReasonCode = "closed_day"
	ReasonTooFarAhead  ReasonCode = "too_far_ahead"
	ReasonPastDate     ReasonCode = "past_date"
	ReasonSameDay      ReasonCode = "same_day"
	ReasonOverCapacity ReasonCode = "over_capacity"
	ReasonNoSlot       ReasonCode = "no_slot"
)

// Verdict is the outcome of running the rule chain over one candidate request.
// Accepted is true iff Reason is ReasonOk.
type Verdict struct {
	Accepted             bool
	Reason               ReasonCode
	UserMessage          string
	SuggestedAlternative string
}

// Request carries one candidate date and whatever else the conversation has
// collected so far. Time and PartySize are optional; rules that need them are
// skipped when they are absent. ExcludeBookingID removes a booking being
// modified from capacity sums.
type Request struct {
	Date             string // canonical yyyy-MM-dd
	Time             *string
	PartySize        *int
	ExcludeBookingID string
}

func accept() *Verdict {
	return &Verdict{Accepted: true, Reason: ReasonOk}
}

func reject(reason ReasonCode, userMessage string) *Verdict {
	return &Verdict{Reason: reason, UserMessage: userMessage}
}
