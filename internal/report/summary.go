package report

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"bizverify/internal/dataset"
	"bizverify/internal/normalize"
	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
)

// blankCounty labels submissions whose county cell was empty.
const blankCounty = "(blank)"

// Summary aggregates one filtered view of a snapshot.
type Summary struct {
	RunID    id.RunID   `json:"run_id"`
	LoadedAt time.Time  `json:"loaded_at"`
	CacheHit bool       `json:"cache_hit"`
	Filter   FilterEcho `json:"filter"`

	Totals       Totals        `json:"totals"`
	Counties     []CountyCount `json:"counties"`
	ZeroCounties []string      `json:"zero_counties"`
	NonCanonical []LabelCount  `json:"non_canonical_counties"`
	Daily        []DailyCount  `json:"daily"`
	Unparsable   int           `json:"unparsable_timestamps"`
	Gender       []LabelCount  `json:"gender,omitempty"`
	AgeBands     []LabelCount  `json:"age_bands,omitempty"`
	Phones       PhoneQuality  `json:"phones"`
	Map          MapQuality    `json:"map"`
}

// FilterEcho repeats the applied filter in the response.
type FilterEcho struct {
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Counties []string `json:"counties,omitempty"`
}

// Totals compares the two duplicate definitions over the filtered view.
type Totals struct {
	Submissions       int `json:"submissions"`
	ManualUnique      int `json:"manual_unique"`
	StrictUnique      int `json:"strict_unique"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// CountyCount is one reference county. Unique counts strict-kept
// submissions only.
type CountyCount struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Submissions int    `json:"submissions"`
	Unique      int    `json:"unique"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PhoneQuality struct {
	Malformed int `json:"malformed"`
}

type MapQuality struct {
	Points  int `json:"points"`
	Invalid int `json:"invalid_coordinates"`
}

// summarize builds a Summary over subs. Demographic sections are only filled
// when the export carried the column.
func summarize(subs []models.Submission, export *dataset.Export, loc *time.Location) Summary {
	var s Summary
	s.Totals.Submissions = len(subs)

	countyIndex := make(map[string]int)
	for i, c := range normalize.Counties() {
		s.Counties = append(s.Counties, CountyCount{Code: c.Code, Name: c.Name})
		countyIndex[c.Name] = i
	}
	nonCanonical := make(map[string]int)
	daily := make(map[string]int)

	hasGender := export.HasColumn(models.ColumnGender)
	hasAge := export.HasColumn(models.ColumnAge)
	gender := make(map[string]int)
	ages := make(map[string]int)

	for _, sub := range subs {
		if !sub.DuplicateRaw {
			s.Totals.ManualUnique++
		}
		if !sub.DuplicateStrict {
			s.Totals.StrictUnique++
		}

		if i, ok := countyIndex[sub.County.Name]; ok && sub.County.Canonical {
			s.Counties[i].Submissions++
			if !sub.DuplicateStrict {
				s.Counties[i].Unique++
			}
		} else {
			label := sub.County.Name
			if label == "" {
				label = blankCounty
			}
			nonCanonical[label]++
		}

		if sub.Timestamp.Valid {
			daily[sub.Timestamp.Time.In(loc).Format(dayLayout)]++
		} else {
			s.Unparsable++
		}

		if hasGender {
			gender[normalize.Gender(sub.Record.Gender)]++
		}
		if hasAge {
			ages[normalize.AgeBand(sub.Record.Age)]++
		}

		if !sub.PhoneWellFormed {
			s.Phones.Malformed++
		}
		if sub.Coordinate != nil {
			s.Map.Points++
		} else if strings.TrimSpace(sub.Record.GeoCoordinates) != "" {
			s.Map.Invalid++
		}
	}
	s.Totals.DuplicatesRemoved = s.Totals.Submissions - s.Totals.StrictUnique

	s.ZeroCounties = []string{}
	for _, c := range s.Counties {
		if c.Submissions == 0 {
			s.ZeroCounties = append(s.ZeroCounties, c.Name)
		}
	}
	s.NonCanonical = sortedCounts(nonCanonical)

	s.Daily = make([]DailyCount, 0, len(daily))
	for day, n := range daily {
		s.Daily = append(s.Daily, DailyCount{Date: day, Count: n})
	}
	slices.SortFunc(s.Daily, func(a, b DailyCount) int { return strings.Compare(a.Date, b.Date) })

	if hasGender {
		s.Gender = sortedCounts(gender)
	}
	if hasAge {
		s.AgeBands = make([]LabelCount, 0, len(normalize.AgeBands))
		for _, band := range normalize.AgeBands {
			s.AgeBands = append(s.AgeBands, LabelCount{Label: band, Count: ages[band]})
		}
	}
	return s
}

// sortedCounts orders by count descending, then label.
func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

func echo(f Filter) FilterEcho {
	var e FilterEcho
	if f.From != nil {
		e.From = f.From.Format(dayLayout)
	}
	if f.To != nil {
		e.To = f.To.Format(dayLayout)
	}
	e.Counties = f.Counties
	return e
}
