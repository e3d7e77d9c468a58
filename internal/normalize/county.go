package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"bizverify/internal/submission/models"
)

var apostrophes = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"´", "'", // acute accent
	"`", "'",
)

// CountyName cleans a raw county value: NFC, ASCII apostrophes, collapsed
// whitespace, title case. It does not consult the reference list.
func CountyName(raw string) string {
	s := apostrophes.Replace(norm.NFC.String(raw))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(s)
}

// NormalizeCounty cleans a raw county value and resolves it against the
// reference enumeration. Unknown values keep their cleaned form and are
// marked non-canonical.
func NormalizeCounty(raw string) models.CountyMatch {
	cleaned := CountyName(raw)
	if canonical, ok := LookupCounty(cleaned); ok {
		return models.CountyMatch{Name: canonical, Canonical: true}
	}
	return models.CountyMatch{Name: cleaned}
}
