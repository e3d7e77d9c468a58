package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGender(t *testing.T) {
	tests := map[string]string{
		"Female":      "female",
		" MALE ":      "male",
		"f":           "female",
		"M":           "male",
		"":            Unknown,
		"   ":         Unknown,
		"Non  binary": "non binary",
	}
	for raw, want := range tests {
		assert.Equal(t, want, Gender(raw), "Gender(%q)", raw)
	}
}

func TestAgeBand(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"17", Unknown},
		{"18", "18-24"},
		{"24", "18-24"},
		{"24.9", "18-24"},
		{"25", "25-34"},
		{" 31.0 ", "25-34"},
		{"44", "35-44"},
		{"45", "45-54"},
		{"55", "55+"},
		{"90", "55+"},
		{"121", Unknown},
		{"", Unknown},
		{"thirty", Unknown},
		{"NaN", Unknown},
		{"Inf", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBand(tt.raw), "AgeBand(%q)", tt.raw)
	}
}
