package models

import (
	"time"

	id "bizverify/pkg/domain"
)

// Status of a completed refresh.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// RunSummary records the outcome of one refresh of the export.
type RunSummary struct {
	RunID            id.RunID      `json:"run_id"`
	Source           string        `json:"source"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration_ns"`
	CacheHit         bool          `json:"cache_hit"`
	Status           Status        `json:"status"`
	Error            string        `json:"error,omitempty"`
	Total            int           `json:"total"`
	KeptRaw          int           `json:"kept_raw"`
	KeptStrict       int           `json:"kept_strict"`
	DuplicatesRaw    int           `json:"duplicates_raw"`
	DuplicatesStrict int           `json:"duplicates_strict"`
}

// Succeeded reports whether the refresh produced a dataset.
func (r RunSummary) Succeeded() bool {
	return r.Status == StatusSucceeded
}
