package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// CountryCode is the dialing prefix applied to local numbers.
const CountryCode = "254"

var (
	phoneSeparators   = strings.NewReplacer("+", "", "-", "", "(", "", ")", "")
	wellFormedPhone   = regexp.MustCompile(`^254[17]\d{8}$`)
	spreadsheetSuffix = regexp.MustCompile(`^(\d+)\.0+$`)
)

// Phone normalizes a phone number. Rules, applied in order to the cleaned
// value (whitespace and + - ( ) removed):
//
//  1. not all digits: returned cleaned, unchanged otherwise
//  2. starts with 254: unchanged
//  3. starts with 0: the trunk 0 is replaced by 254
//  4. starts with 7 or 1: 254 is prepended
//  5. anything else: unchanged
//
// Length is never checked here; see PhoneWellFormed.
func Phone(raw string) string {
	cleaned := phoneSeparators.Replace(stripSpace(raw))
	cleaned = trimSpreadsheetFraction(cleaned)
	if !isDigits(cleaned) {
		return cleaned
	}

	switch {
	case strings.HasPrefix(cleaned, CountryCode):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return CountryCode + cleaned[1:]
	case strings.HasPrefix(cleaned, "7"), strings.HasPrefix(cleaned, "1"):
		return CountryCode + cleaned
	default:
		return cleaned
	}
}

// PhoneWellFormed reports whether a normalized number is a complete mobile
// number: 254, a 7 or 1 subscriber prefix, then eight digits.
func PhoneWellFormed(normalized string) bool {
	return wellFormedPhone.MatchString(normalized)
}

// trimSpreadsheetFraction drops a ".0" suffix that spreadsheets add when a
// numeric cell is exported as a float.
func trimSpreadsheetFraction(s string) string {
	if m := spreadsheetSuffix.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
