package extractor

import (
	"io"
	"testing"
	"time"

	"mesero/pkg/config"
	"mesero/pkg/logger"
)

func newTestExtractor() *Extractor {
	e := NewExtractor(&config.Config{
		RiceMenu: []string{
			"Arroz de chorizo",
			"Arroz meloso de pulpo y gambones",
			"Arroz a banda",
			"Arroz del señoret",
			"Arroz de carrillada con boletus",
			"Paella de verduras",
		},
		Location: time.UTC,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
	})
	// Wednesday
	e.now = func() time.Time {
		return time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func TestExtract_FullDirective(t *testing.T) {
	e := newTestExtractor()

	fields := e.Extract("FECHA: 13/06/2026\nPERSONAS: 4\nHORA: 14:00\nARROZ: a banda\nRACIONES: 4\nNOMBRE: María García")

	if fields.Date == nil || fields.Date.Value != "2026-06-13" {
		t.Errorf("expected date 2026-06-13, got %+v", fields.Date)
	}
	if fields.PartySize == nil || fields.PartySize.Value != 4 {
		t.Errorf("expected party size 4, got %+v", fields.PartySize)
	}
	if fields.Time == nil || fields.Time.Value != "14:00" {
		t.Errorf("expected time 14:00, got %+v", fields.Time)
	}
	if fields.Rice == nil || fields.Rice.Type != "Arroz a banda" || fields.Rice.Servings != 4 {
		t.Errorf("expected Arroz a banda with 4 servings, got %+v", fields.Rice)
	}
	if fields.CustomerName == nil || fields.CustomerName.Value != "María García" {
		t.Errorf("expected customer name, got %+v", fields.CustomerName)
	}
}

func TestExtract_GarbageYieldsNothing(t *testing.T) {
	e := newTestExtractor()

	tests := []string{
		"",
		"completely free text with no directive",
		"FECHA: el finde que viene\nHORA: por la tarde",
		"PERSONAS: muchos",
	}

	for _, directive := range tests {
		fields := e.Extract(directive)
		if !fields.Empty() {
			t.Errorf("expected empty extraction for %q, got %+v", directive, fields)
		}
	}
}

func TestExtract_RiceDecline(t *testing.T) {
	e := newTestExtractor()

	for _, directive := range []string{"SIN_ARROZ", "ARROZ: no", "ARROZ: ninguno"} {
		fields := e.Extract(directive)
		if fields.Rice == nil || !fields.Rice.Declined {
			t.Errorf("expected explicit decline for %q, got %+v", directive, fields.Rice)
		}
	}
}

func TestExtract_RiceAmbiguousUnresolved(t *testing.T) {
	e := newTestExtractor()

	fields := e.Extract("ARROZ: arroz")
	if fields.Rice != nil {
		t.Errorf("expected bare 'arroz' to stay unresolved, got %+v", fields.Rice)
	}
}

func TestExtract_ServingsWithoutRiceIgnored(t *testing.T) {
	e := newTestExtractor()

	fields := e.Extract("RACIONES: 4")
	if fields.Rice != nil {
		t.Errorf("expected servings without a named rice to be dropped, got %+v", fields.Rice)
	}
}

func TestExtract_Corrections(t *testing.T) {
	e := newTestExtractor()

	fields := e.Extract("CORRIGE: fecha, hora\nFECHA: 20/06/2026")
	if !fields.IsCorrection(SlotDate) {
		t.Error("expected date flagged as correction")
	}
	if !fields.IsCorrection(SlotTime) {
		t.Error("expected time flagged as correction")
	}
	if fields.IsCorrection(SlotPartySize) {
		t.Error("party size was not corrected")
	}
}

func TestExtract_ConfirmationSignals(t *testing.T) {
	e := newTestExtractor()

	if !e.Extract("CONFIRMA").Confirmed {
		t.Error("expected confirmation")
	}
	if !e.Extract("RECHAZA").Declined {
		t.Error("expected decline")
	}
	if !e.Extract("CANCELA").Cancelled {
		t.Error("expected cancellation")
	}
}

func TestParseDate(t *testing.T) {
	ref := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		raw    string
		want   string
		wantOk bool
	}{
		{"13/06/2026", "2026-06-13", true},
		{"13-6-2026", "2026-06-13", true},
		{"13/06/26", "2026-06-13", true},
		{"2026-06-13", "2026-06-13", true},
		{"13/06", "2026-06-13", true},
		{"05/01", "2027-01-05", true}, // already past this year, rolls over
		{"hoy", "2026-06-10", true},
		{"mañana", "2026-06-11", true},
		{"pasado mañana", "2026-06-12", true},
		{"sábado", "2026-06-13", true},
		{"el sábado", "2026-06-13", true},
		{"sabado que viene", "2026-06-13", true},
		{"miércoles", "2026-06-17", true}, // same weekday means next week
		{"31/02/2026", "", false},
		{"el finde", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, _, ok := ParseDate(tt.raw, ref)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("ParseDate(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOk bool
	}{
		{"14:00", "14:00", true},
		{"14.30", "14:30", true},
		{"14h", "14:00", true},
		{"a las 14", "14:00", true},
		{"las 2 y media", "02:30", true},
		{"14:75", "", false},
		{"25:00", "", false},
		{"por la tarde", "", false},
	}

	for _, tt := range tests {
		got, _, ok := ParseTime(tt.raw)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("ParseTime(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOk bool
	}{
		{"4", 4, true},
		{"cuatro", 4, true},
		{"somos cuatro", 4, true},
		{"4 personas", 4, true},
		{"una pareja", 0, false}, // "una"=1 conflicts with "pareja"=2
		{"ninguno", 0, true},
		{"veintidós", 22, true},
		{"muchos", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCount(tt.raw)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("ParseCount(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOk)
		}
	}
}
