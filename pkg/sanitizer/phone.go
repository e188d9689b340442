package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var supportedRegions = []string{
	"ES",
	"FR",
	"GB",
}

// NormalizePhone returns the E.164 form of phone, or "" when it cannot be parsed
// as a number from any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}

// NationalContactPhone converts a WhatsApp sender id (e.g. "34612345678" or
// "+34 612 34 56 78") into the 9-digit national form bookings are stored under.
// Returns "" when the number is not a valid Spanish subscriber number.
func NationalContactPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	// Decide "has country code" on digit count, not raw length: formatting
	// characters in a national number must not push it over the threshold.
	hasPlus := strings.HasPrefix(phone, "+")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	if hasPlus || len(digits) > 9 {
		digits = "+" + digits
	}

	parsed, err := phonenumbers.Parse(digits, "ES")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	if parsed.GetCountryCode() != 34 {
		return ""
	}
	return phonenumbers.GetNationalSignificantNumber(parsed)
}
