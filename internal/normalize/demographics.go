package normalize

import (
	"math"
	"strconv"
	"strings"
)

// Unknown labels a blank or unreadable demographic value.
const Unknown = "unknown"

// AgeBands lists the reporting bands in display order.
var AgeBands = []string{"18-24", "25-34", "35-44", "45-54", "55+", Unknown}

// Gender folds the free-text gender column to lower case. Common
// abbreviations are expanded; anything else is kept as entered.
func Gender(raw string) string {
	g := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	switch g {
	case "":
		return Unknown
	case "f":
		return "female"
	case "m":
		return "male"
	}
	return g
}

// AgeBand places a raw age in one of AgeBands. Ages below 18, above 120 or
// not numeric are Unknown. Spreadsheet fractions such as "31.0" are accepted.
func AgeBand(raw string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown
	}
	age := int(math.Floor(f))
	switch {
	case age < 18 || age > 120:
		return Unknown
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	default:
		return "55+"
	}
}
