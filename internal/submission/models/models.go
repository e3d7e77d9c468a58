package models

import (
	"time"

	id "bizverify/pkg/domain"
)

// Column headers of the verification export. Headers are matched after
// trimming surrounding whitespace.
const (
	ColumnTimestamp  = "Timestamp"
	ColumnCounty     = "County"
	ColumnNationalID = "Verified ID Number"
	ColumnPhone      = "Verified Phone Number"
	ColumnGeo        = "Geo-Coordinates"
	ColumnGender     = "Gender"
	ColumnAge        = "Age"
)

// RequiredColumns must be present in every export.
var RequiredColumns = []string{ColumnTimestamp, ColumnCounty, ColumnNationalID, ColumnPhone}

// Record is one submission exactly as it appeared in the export.
type Record struct {
	ID             id.RecordID `json:"record_id"`
	Timestamp      string      `json:"timestamp"`
	County         string      `json:"county"`
	NationalID     string      `json:"national_id"`
	Phone          string      `json:"phone"`
	GeoCoordinates string      `json:"geo_coordinates,omitempty"`
	Gender         string      `json:"gender,omitempty"`
	Age            string      `json:"age,omitempty"`
}

// Coordinate is a decoded latitude/longitude inside the operating region.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Timestamp is a parsed submission time. Valid is false when the raw value
// could not be parsed; Time is then the zero value and must not be used.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// CountyMatch is a cleaned county name. Canonical reports whether Name is one
// of the reference counties.
type CountyMatch struct {
	Name      string `json:"name"`
	Canonical bool   `json:"canonical"`
}

// Submission is a Record with its derived annotations. Annotations are set
// once when a run is built and never changed afterwards.
type Submission struct {
	Record          Record
	NormalizedID    string
	NormalizedPhone string
	PhoneWellFormed bool
	County          CountyMatch
	Timestamp       Timestamp
	Coordinate      *Coordinate
	DuplicateRaw    bool
	DuplicateStrict bool
}
