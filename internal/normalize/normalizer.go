package normalize

import (
	"time"

	"bizverify/internal/submission/models"
)

// Normalizer applies the field rules to whole records. It holds only
// configuration and is safe for concurrent use.
type Normalizer struct {
	location *time.Location
	box      BoundingBox
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.location = loc
		}
	}
}

// WithBoundingBox replaces the region used to validate coordinates.
func WithBoundingBox(box BoundingBox) Option {
	return func(n *Normalizer) {
		n.box = box
	}
}

// Location returns the zone used for timestamps without an offset.
func (n *Normalizer) Location() *time.Location {
	return n.location
}

// New creates a Normalizer for Kenya in UTC unless overridden.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		location: time.UTC,
		box:      KenyaBox,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize derives every annotation except the duplicate flags, which
// depend on the rest of the batch.
func (n *Normalizer) Normalize(rec models.Record) models.Submission {
	phone := Phone(rec.Phone)
	return models.Submission{
		Record:          rec,
		NormalizedID:    NationalID(rec.NationalID),
		NormalizedPhone: phone,
		PhoneWellFormed: PhoneWellFormed(phone),
		County:          NormalizeCounty(rec.County),
		Timestamp:       ParseTimestamp(rec.Timestamp, n.location),
		Coordinate:      ParseCoordinate(rec.GeoCoordinates, n.box),
	}
}

// NormalizeAll normalizes a batch, preserving order.
func (n *Normalizer) NormalizeAll(records []models.Record) []models.Submission {
	out := make([]models.Submission, len(records))
	for i, rec := range records {
		out[i] = n.Normalize(rec)
	}
	return out
}
