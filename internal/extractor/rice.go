package extractor

import (
	"strings"

	"mesero/pkg/sanitizer"
)

var riceDeclineWords = map[string]bool{
	"no": true, "ninguno": true, "nada": true, "sin arroz": true, "sin": true,
}

// resolveRice matches a customer phrasing against the rice menu. The match
// must be unique: a phrase fitting two menu entries resolves to nothing so
// the conversation re-asks with the full menu.
func (e *Extractor) resolveRice(raw string) (*RiceField, bool) {
	folded := sanitizer.FoldForMatch(strings.TrimSpace(raw))
	if folded == "" {
		return nil, false
	}

	if riceDeclineWords[folded] {
		return &RiceField{Declined: true, Confidence: 1.0}, true
	}

	var matched string
	matches := 0
	for _, item := range e.menu {
		if riceMatches(folded, item) {
			matched = item
			matches++
		}
	}

	if matches != 1 {
		if matches > 1 {
			e.log.Debug("Ambiguous rice phrasing", "raw", raw, "matches", matches)
		}
		return nil, false
	}

	return &RiceField{Type: matched, Confidence: 0.9}, true
}

// riceMatches checks whether every distinctive word of the phrase appears in
// the menu entry. Generic filler ("arroz", "de", "el") does not count as
// distinctive, so "arroz de pulpo" finds the pulpo entry but bare "arroz"
// matches nothing.
func riceMatches(folded string, menuItem string) bool {
	item := sanitizer.FoldForMatch(menuItem)
	if folded == item {
		return true
	}

	filler := map[string]bool{
		"arroz": true, "paella": true, "de": true, "del": true, "la": true,
		"el": true, "con": true, "y": true, "un": true, "una": true,
	}

	distinctive := 0
	for _, word := range strings.Fields(folded) {
		if filler[word] {
			continue
		}
		distinctive++
		if !strings.Contains(item, word) {
			return false
		}
	}
	return distinctive > 0
}
