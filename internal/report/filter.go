package report

import (
	"slices"
	"strings"
	"time"

	"bizverify/internal/normalize"
	"bizverify/internal/submission/models"
	dErrors "bizverify/pkg/domain-errors"
)

const dayLayout = "2006-01-02"

// View selects which submissions a listing or export contains.
type View string

const (
	ViewAll        View = "all"
	ViewKept       View = "kept"
	ViewDuplicates View = "duplicates"
)

// ParseView parses a view name. Empty means ViewAll; "strict" is accepted
// for ViewKept.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ViewAll):
		return ViewAll, nil
	case string(ViewKept), "strict":
		return ViewKept, nil
	case string(ViewDuplicates):
		return ViewDuplicates, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "view must be one of all, kept, duplicates")
}

// Includes reports whether sub belongs in the view. Kept and duplicates
// follow the strict flags.
func (v View) Includes(sub models.Submission) bool {
	switch v {
	case ViewKept:
		return !sub.DuplicateStrict
	case ViewDuplicates:
		return sub.DuplicateStrict
	}
	return true
}

// Filter narrows a snapshot before aggregation. Date bounds are inclusive
// calendar days in the service time zone. Once either bound is set,
// submissions with unparsable timestamps no longer match.
type Filter struct {
	From     *time.Time
	To       *time.Time
	Counties []string
}

// ParseFilter builds a Filter from query values. Dates use YYYY-MM-DD and
// counties may be given in any spelling the county normalizer resolves.
func ParseFilter(from, to string, counties []string) (Filter, error) {
	var f Filter
	var err error
	if f.From, err = parseDay("from", from); err != nil {
		return Filter{}, err
	}
	if f.To, err = parseDay("to", to); err != nil {
		return Filter{}, err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return Filter{}, dErrors.New(dErrors.CodeBadRequest, "from must not be after to")
	}
	for _, raw := range counties {
		name, ok := normalize.LookupCounty(normalize.CountyName(raw))
		if !ok {
			return Filter{}, dErrors.New(dErrors.CodeBadRequest, "unknown county: "+strings.TrimSpace(raw))
		}
		if !slices.Contains(f.Counties, name) {
			f.Counties = append(f.Counties, name)
		}
	}
	return f, nil
}

func parseDay(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse(dayLayout, value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, field+" must be a date in YYYY-MM-DD form")
	}
	return &day, nil
}

// Dated reports whether either date bound is set.
func (f Filter) Dated() bool {
	return f.From != nil || f.To != nil
}

// Matches reports whether sub passes the filter, reading timestamps in loc.
func (f Filter) Matches(sub models.Submission, loc *time.Location) bool {
	if len(f.Counties) > 0 {
		if !sub.County.Canonical || !slices.Contains(f.Counties, sub.County.Name) {
			return false
		}
	}
	if !f.Dated() {
		return true
	}
	if !sub.Timestamp.Valid {
		return false
	}
	day := sub.Timestamp.Time.In(loc).Format(dayLayout)
	if f.From != nil && day < f.From.Format(dayLayout) {
		return false
	}
	if f.To != nil && day > f.To.Format(dayLayout) {
		return false
	}
	return true
}
