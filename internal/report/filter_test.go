package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizverify/internal/submission/models"
	dErrors "bizverify/pkg/domain-errors"
)

func TestParseView(t *testing.T) {
	for raw, want := range map[string]View{
		"":           ViewAll,
		"all":        ViewAll,
		"KEPT":       ViewKept,
		"strict":     ViewKept,
		"duplicates": ViewDuplicates,
	} {
		got, err := ParseView(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseView("unique")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestParseFilter(t *testing.T) {
	t.Run("dates and counties", func(t *testing.T) {
		f, err := ParseFilter("2025-09-01", "2025-09-30", []string{"nairobi", " Murang'a", "Nairobi"})
		require.NoError(t, err)
		require.NotNil(t, f.From)
		require.NotNil(t, f.To)
		assert.Equal(t, "2025-09-01", f.From.Format(dayLayout))
		assert.Equal(t, []string{"Nairobi", "Murang'a"}, f.Counties)
		assert.True(t, f.Dated())
	})

	t.Run("empty is unfiltered", func(t *testing.T) {
		f, err := ParseFilter("", " ", nil)
		require.NoError(t, err)
		assert.False(t, f.Dated())
		assert.Empty(t, f.Counties)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		cases := []struct{ from, to, county string }{
			{"15/09/2025", "", ""},
			{"", "2025-13-01", ""},
			{"2025-09-30", "2025-09-01", ""},
			{"", "", "Atlantis"},
		}
		for _, tc := range cases {
			var counties []string
			if tc.county != "" {
				counties = []string{tc.county}
			}
			_, err := ParseFilter(tc.from, tc.to, counties)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "%+v", tc)
		}
	})
}

func TestFilterMatches(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)

	// 22:30 UTC on the 15th is already the 16th in Nairobi.
	late := models.Submission{
		County:    models.CountyMatch{Name: "Kisumu", Canonical: true},
		Timestamp: models.Timestamp{Time: time.Date(2025, 9, 15, 22, 30, 0, 0, time.UTC), Valid: true},
	}
	undated := models.Submission{County: models.CountyMatch{Name: "Kisumu", Canonical: true}}
	unknown := models.Submission{County: models.CountyMatch{Name: "Kisumu"}, Timestamp: late.Timestamp}

	sixteenth := time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)
	byDay := Filter{From: &sixteenth, To: &sixteenth}
	assert.True(t, byDay.Matches(late, nairobi))
	assert.False(t, byDay.Matches(late, time.UTC))
	assert.False(t, byDay.Matches(undated, nairobi))

	assert.True(t, Filter{}.Matches(undated, time.UTC))

	byCounty := Filter{Counties: []string{"Kisumu"}}
	assert.True(t, byCounty.Matches(late, time.UTC))
	assert.False(t, byCounty.Matches(unknown, time.UTC), "non-canonical values never match a county filter")
}
