package extractor

import (
	"strings"
	"time"

	"mesero/pkg/config"
	"mesero/pkg/logger"
	"mesero/pkg/sanitizer"
)

// Slot names one draft field a directive line can target.
type Slot string

const maxCommentLen = 500

const (
	SlotDate      Slot = "date"
	SlotPartySize Slot = "party_size"
	SlotTime      Slot = "time"
	SlotRice      Slot = "rice"
	SlotEquipment Slot = "equipment"
	SlotName      Slot = "name"
)

// DateField is a parsed candidate date in canonical yyyy-MM-dd form.
type DateField struct {
	Value      string
	Confidence float64
}

// TimeField is a parsed candidate time-of-day in HH:mm form.
type TimeField struct {
	Value      string
	Confidence float64
}

// NumberField is a parsed count (party size, servings, equipment).
type NumberField struct {
	Value      int
	Confidence float64
}

// NameField is a free-text value that survived sanitization.
type NameField struct {
	Value      string
	Confidence float64
}

// RiceField resolves the rice slot tri-state: a named menu selection,
// an explicit decline, or (absent field) unspecified.
type RiceField struct {
	Declined   bool
	Type       string
	Servings   int // 0 when only the type was given
	Confidence float64
}

// Fields is the partial field set extracted from one directive. Absent
// pointers mean the directive said nothing usable about that slot.
type Fields struct {
	Date         *DateField
	PartySize    *NumberField
	Time         *TimeField
	Rice         *RiceField
	HighChairs   *NumberField
	Strollers    *NumberField
	CustomerName *NameField
	Comment      string

	corrections map[Slot]bool

	Confirmed bool // affirmative confirmation of the summary
	Declined  bool // negative answer during confirmation
	Cancelled bool // customer walked away from the whole booking
}

// IsCorrection reports whether the directive explicitly flagged the slot as
// a correction of an earlier value.
func (f *Fields) IsCorrection(slot Slot) bool {
	return f.corrections[slot]
}

// Empty reports whether nothing usable was extracted from the turn.
func (f *Fields) Empty() bool {
	return f.Date == nil && f.PartySize == nil && f.Time == nil && f.Rice == nil &&
		f.HighChairs == nil && f.Strollers == nil && f.CustomerName == nil &&
		!f.Confirmed && !f.Declined && !f.Cancelled && len(f.corrections) == 0
}

// Extractor parses the semi-structured directive emitted by the upstream
// language model. The directive is untrusted text: every line is parsed
// defensively and anything ambiguous yields no value rather than a guess.
type Extractor struct {
	menu []string
	log  *logger.Logger
	now  func() time.Time
}

func NewExtractor(cfg *config.Config) *Extractor {
	return &Extractor{
		menu: cfg.RiceMenu,
		log:  cfg.Log,
		now:  func() time.Time { return time.Now().In(cfg.Location) },
	}
}

// Extract parses one directive into a partial field set.
func (e *Extractor) Extract(rawDirective string) *Fields {
	fields := &Fields{corrections: make(map[Slot]bool)}

	var pendingServings *NumberField

	for _, line := range strings.Split(rawDirective, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value := splitDirectiveLine(line)
		switch key {
		case "FECHA":
			if parsed, conf, ok := ParseDate(value, e.now()); ok {
				fields.Date = &DateField{Value: parsed, Confidence: conf}
			}
		case "PERSONAS", "COMENSALES":
			if n, ok := ParseCount(value); ok && n > 0 {
				fields.PartySize = &NumberField{Value: n, Confidence: countConfidence(value)}
			}
		case "HORA":
			if parsed, conf, ok := ParseTime(value); ok {
				fields.Time = &TimeField{Value: parsed, Confidence: conf}
			}
		case "ARROZ":
			if choice, ok := e.resolveRice(value); ok {
				fields.Rice = choice
			}
		case "RACIONES":
			if n, ok := ParseCount(value); ok && n > 0 {
				pendingServings = &NumberField{Value: n, Confidence: countConfidence(value)}
			}
		case "SIN_ARROZ":
			fields.Rice = &RiceField{Declined: true, Confidence: 1.0}
		case "TRONAS":
			if n, ok := ParseCount(value); ok && n >= 0 {
				fields.HighChairs = &NumberField{Value: n, Confidence: countConfidence(value)}
			}
		case "CARRITOS":
			if n, ok := ParseCount(value); ok && n >= 0 {
				fields.Strollers = &NumberField{Value: n, Confidence: countConfidence(value)}
			}
		case "NOMBRE":
			if name := sanitizer.NormalizeName(value); name != "" {
				fields.CustomerName = &NameField{Value: name, Confidence: 1.0}
			}
		case "COMENTARIO":
			fields.Comment = sanitizer.NormalizeComment(value, maxCommentLen)
		case "CORRIGE":
			for _, slot := range parseCorrectionSlots(value) {
				fields.corrections[slot] = true
			}
		case "CONFIRMA":
			fields.Confirmed = true
		case "RECHAZA":
			fields.Declined = true
		case "CANCELA":
			fields.Cancelled = true
		}
	}

	// A serving count only means something next to a named rice.
	if pendingServings != nil && fields.Rice != nil && !fields.Rice.Declined {
		fields.Rice.Servings = pendingServings.Value
	}

	return fields
}

// splitDirectiveLine separates "CLAVE: valor" tolerating missing values,
// stray spacing and lowercase keys.
func splitDirectiveLine(line string) (string, string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		key = line
		value = ""
	}

	key = strings.ToUpper(strings.TrimSpace(sanitizer.FoldForMatch(key)))
	key = strings.ReplaceAll(key, " ", "_")
	return key, strings.TrimSpace(value)
}

func parseCorrectionSlots(value string) []Slot {
	var slots []Slot
	for _, part := range strings.Split(value, ",") {
		switch sanitizer.FoldForMatch(part) {
		case "fecha", "dia", "date":
			slots = append(slots, SlotDate)
		case "personas", "comensales":
			slots = append(slots, SlotPartySize)
		case "hora", "time":
			slots = append(slots, SlotTime)
		case "arroz", "raciones":
			slots = append(slots, SlotRice)
		case "tronas", "carritos", "equipamiento":
			slots = append(slots, SlotEquipment)
		case "nombre":
			slots = append(slots, SlotName)
		}
	}
	return slots
}
