package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Scientific notation as spreadsheets write it: one leading digit, the rest
// of the digits after the point.
var exponentForm = regexp.MustCompile(`^([1-9])\.(\d+)[eE]\+?(\d+)$`)

// NationalID trims and upper-cases an ID number. Numeric IDs that a
// spreadsheet turned into floats ("12345678.0", "1.2345678E7") are restored to
// their integer form first. Exponent forms are only restored when every digit
// of the integer is present; rounded forms such as "1.23457E+07" are kept.
func NationalID(raw string) string {
	s := strings.TrimSpace(raw)
	s = trimSpreadsheetFraction(s)
	if m := exponentForm.FindStringSubmatch(s); m != nil {
		if exp, err := strconv.Atoi(m[3]); err == nil && exp == len(m[2]) {
			s = m[1] + m[2]
		}
	}
	return strings.ToUpper(s)
}
