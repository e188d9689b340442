package extractor

import (
	"strconv"
	"strings"

	"mesero/pkg/sanitizer"
)

// Spanish number words a customer plausibly uses for party sizes, servings
// and equipment counts. Composite tens ("veintitres") are covered up to the
// online booking range; anything beyond comes in as digits anyway.
var numberWords = map[string]int{
	"cero": 0, "ninguno": 0, "ninguna": 0,
	"un": 1, "uno": 1, "una": 1,
	"dos": 2, "pareja": 2,
	"tres": 3, "cuatro": 4, "cinco": 5, "seis": 6, "siete": 7,
	"ocho": 8, "nueve": 9, "diez": 10, "once": 11, "doce": 12,
	"trece": 13, "catorce": 14, "quince": 15, "dieciseis": 16,
	"diecisiete": 17, "dieciocho": 18, "diecinueve": 19, "veinte": 20,
	"veintiuno": 21, "veintidos": 22, "veintitres": 23, "veinticuatro": 24,
	"veinticinco": 25, "treinta": 30,
}

// ParseCount resolves a count phrased as digits or a Spanish number word.
// "4 personas" and "somos cuatro" both resolve; a phrase with two distinct
// counts resolves to nothing.
func ParseCount(raw string) (int, bool) {
	folded := sanitizer.FoldForMatch(strings.TrimSpace(raw))
	if folded == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(folded); err == nil {
		return n, true
	}

	found := -1
	for _, token := range strings.Fields(folded) {
		token = strings.Trim(token, ".,;")

		var n int
		var ok bool
		if v, err := strconv.Atoi(token); err == nil {
			n, ok = v, true
		} else if v, exists := numberWords[token]; exists {
			n, ok = v, true
		}

		if !ok {
			continue
		}
		if found >= 0 && found != n {
			return 0, false // two conflicting counts in one phrase
		}
		found = n
	}

	if found < 0 {
		return 0, false
	}
	return found, true
}

// countConfidence distinguishes an explicit digit from a worded count.
func countConfidence(raw string) float64 {
	if _, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return 1.0
	}
	return 0.9
}
