package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"bizverify/internal/submission/models"
)

// ParseTimestamp parses a free-form timestamp in loc. Ambiguous numeric dates
// such as 03/04/2025 are read month first, which is how form exports write
// them; a date that only parses day first (15/09/2025) is read day first.
// Unparsable input yields an invalid Timestamp, never a default date.
func ParseTimestamp(raw string, loc *time.Location) models.Timestamp {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.Timestamp{}
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return models.Timestamp{}
	}
	return models.Timestamp{Time: t, Valid: true}
}
