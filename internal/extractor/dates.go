package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mesero/pkg/model"
	"mesero/pkg/sanitizer"
)

var (
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})(?:[/\-.](\d{2,4}))?$`)
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	clockTimeRe   = regexp.MustCompile(`^(\d{1,2})(?:[:.h](\d{2})?)?$`)
)

var weekdayNames = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"domingo":   time.Sunday,
}

// ParseDate resolves one natural phrasing of a date into canonical
// yyyy-MM-dd. The reference time anchors relative phrasings ("mañana", bare
// weekdays, day/month without a year). Ambiguous phrasings resolve to
// nothing: the caller asks a clarifying question instead of guessing.
func ParseDate(raw string, ref time.Time) (string, float64, bool) {
	folded := sanitizer.FoldForMatch(strings.TrimSpace(raw))
	if folded == "" {
		return "", 0, false
	}

	switch folded {
	case "hoy":
		return ref.Format(model.DateLayout), 0.9, true
	case "manana":
		return ref.AddDate(0, 0, 1).Format(model.DateLayout), 0.9, true
	case "pasado manana", "pasado":
		return ref.AddDate(0, 0, 2).Format(model.DateLayout), 0.9, true
	}

	if m := isoDateRe.FindStringSubmatch(folded); m != nil {
		return validatedDate(m[3]+"/"+m[2]+"/"+m[1], 1.0)
	}

	if m := numericDateRe.FindStringSubmatch(folded); m != nil {
		day, month, year := m[1], m[2], m[3]
		if year == "" {
			// Day and month only: pick the next occurrence from the
			// reference date, rolling into next year when already past.
			return resolveYearless(day, month, ref)
		}
		if len(year) == 2 {
			year = "20" + year
		}
		return validatedDate(day+"/"+month+"/"+year, 1.0)
	}

	if wd, ok := matchWeekday(folded); ok {
		return nextWeekday(ref, wd).Format(model.DateLayout), 0.8, true
	}

	return "", 0, false
}

// matchWeekday accepts a bare weekday with common lead-ins ("el sábado",
// "este sábado", "sábado que viene"). Anything naming more than one day,
// or none, stays unresolved.
func matchWeekday(folded string) (time.Weekday, bool) {
	for _, lead := range []string{"el proximo ", "proximo ", "este ", "el "} {
		folded = strings.TrimPrefix(folded, lead)
	}
	folded = strings.TrimSuffix(folded, " que viene")
	folded = strings.TrimSpace(folded)

	wd, ok := weekdayNames[folded]
	return wd, ok
}

// nextWeekday is the first occurrence of wd strictly after ref. A customer
// saying a weekday never means today.
func nextWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := int(wd-ref.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return ref.AddDate(0, 0, days)
}

func resolveYearless(day, month string, ref time.Time) (string, float64, bool) {
	d, err1 := strconv.Atoi(day)
	m, err2 := strconv.Atoi(month)
	if err1 != nil || err2 != nil {
		return "", 0, false
	}

	candidate := time.Date(ref.Year(), time.Month(m), d, 0, 0, 0, 0, ref.Location())
	if candidate.Day() != d || candidate.Month() != time.Month(m) {
		return "", 0, false // e.g. 31/02 rolled over
	}

	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	if candidate.Before(today) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate.Format(model.DateLayout), 0.9, true
}

func validatedDate(ddmmyyyy string, confidence float64) (string, float64, bool) {
	parsed, err := time.Parse("2/1/2006", ddmmyyyy)
	if err != nil {
		return "", 0, false
	}
	return parsed.Format(model.DateLayout), confidence, true
}

// ParseTime resolves one phrasing of a time-of-day into canonical HH:mm.
// Accepted: "14:00", "14.30", "14h", bare hours, and "a las 14" lead-ins.
// Ambiguous morning/afternoon phrasings without a number stay unresolved.
func ParseTime(raw string) (string, float64, bool) {
	folded := sanitizer.FoldForMatch(strings.TrimSpace(raw))
	for _, lead := range []string{"a las ", "a la ", "sobre las ", "las "} {
		folded = strings.TrimPrefix(folded, lead)
	}
	folded = strings.TrimSpace(strings.TrimSuffix(folded, "h"))

	half := false
	if rest, found := strings.CutSuffix(folded, " y media"); found {
		folded = rest
		half = true
	}

	m := clockTimeRe.FindStringSubmatch(folded)
	if m == nil {
		return "", 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return "", 0, false
	}

	minute := 0
	confidence := 1.0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return "", 0, false
		}
	} else {
		confidence = 0.9 // bare hour
	}
	if half {
		minute = 30
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), confidence, true
}
