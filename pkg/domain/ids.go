// Package domain defines the typed identifiers shared across modules.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "bizverify/pkg/domain-errors"
)

// RunID identifies one pipeline refresh.
type RunID uuid.UUID

// RecordID is the zero-based position of a submission in the loaded export.
// Positions are only meaningful within a single run.
type RecordID int

// NewRunID returns a fresh random run identifier.
func NewRunID() RunID {
	return RunID(uuid.New())
}

func (id RunID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the run ID is the zero value.
func (id RunID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText encodes the run ID in its canonical UUID form.
func (id RunID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *RunID) UnmarshalText(text []byte) error {
	parsed, err := ParseRunID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseRunID parses a non-nil UUID run identifier.
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return RunID{}, dErrors.New(dErrors.CodeInvalidInput, "run id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return RunID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid run id")
	}
	if parsed == uuid.Nil {
		return RunID{}, dErrors.New(dErrors.CodeInvalidInput, "run id must not be nil")
	}
	return RunID(parsed), nil
}

func (id RecordID) String() string {
	return strconv.Itoa(int(id))
}
