package handler

import (
	"time"

	"bizverify/internal/report"
	runmodels "bizverify/internal/runs/models"
	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
)

// RecordsResponse is the HTTP response for GET /records.
type RecordsResponse struct {
	RunID    id.RunID         `json:"run_id"`
	LoadedAt time.Time        `json:"loaded_at"`
	View     string           `json:"view"`
	Count    int              `json:"count"`
	Records  []RecordResponse `json:"records"`
}

// RecordResponse is one submission with its derived fields.
type RecordResponse struct {
	models.Record
	NormalizedID    string             `json:"normalized_id"`
	NormalizedPhone string             `json:"normalized_phone"`
	PhoneWellFormed bool               `json:"phone_well_formed"`
	County          models.CountyMatch `json:"normalized_county"`
	SubmittedAt     *time.Time         `json:"submitted_at,omitempty"`
	Coordinate      *models.Coordinate `json:"coordinate,omitempty"`
	DuplicateRaw    bool               `json:"duplicate_manual"`
	DuplicateStrict bool               `json:"duplicate_strict"`
}

// MapResponse is the HTTP response for GET /map.
type MapResponse struct {
	Count  int               `json:"count"`
	Points []report.MapPoint `json:"points"`
}

// RefreshResponse is the HTTP response for POST /refresh.
type RefreshResponse struct {
	RunID       id.RunID  `json:"run_id"`
	LoadedAt    time.Time `json:"loaded_at"`
	CacheHit    bool      `json:"cache_hit"`
	Submissions int       `json:"submissions"`
}

// RunsResponse is the HTTP response for GET /runs.
type RunsResponse struct {
	Runs []runmodels.RunSummary `json:"runs"`
}

// FromRecordSet converts a record listing to an HTTP response.
func FromRecordSet(set *report.RecordSet) *RecordsResponse {
	records := make([]RecordResponse, 0, len(set.Submissions))
	for _, sub := range set.Submissions {
		rec := RecordResponse{
			Record:          sub.Record,
			NormalizedID:    sub.NormalizedID,
			NormalizedPhone: sub.NormalizedPhone,
			PhoneWellFormed: sub.PhoneWellFormed,
			County:          sub.County,
			Coordinate:      sub.Coordinate,
			DuplicateRaw:    sub.DuplicateRaw,
			DuplicateStrict: sub.DuplicateStrict,
		}
		if sub.Timestamp.Valid {
			ts := sub.Timestamp.Time
			rec.SubmittedAt = &ts
		}
		records = append(records, rec)
	}
	return &RecordsResponse{
		RunID:    set.RunID,
		LoadedAt: set.LoadedAt,
		View:     string(set.View),
		Count:    len(records),
		Records:  records,
	}
}

// FromSnapshot converts a refreshed snapshot to an HTTP response.
func FromSnapshot(snap *report.Snapshot) *RefreshResponse {
	return &RefreshResponse{
		RunID:       snap.RunID,
		LoadedAt:    snap.LoadedAt,
		CacheHit:    snap.CacheHit,
		Submissions: len(snap.Submissions),
	}
}
