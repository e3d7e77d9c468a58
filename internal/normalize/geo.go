package normalize

import (
	"strconv"
	"strings"

	"bizverify/internal/submission/models"
)

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// KenyaBox covers Kenya with a margin.
var KenyaBox = BoundingBox{MinLat: -5, MaxLat: 5, MinLon: 33, MaxLon: 42}

// Contains reports whether the point lies inside the box. NaN never does.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// ParseCoordinate reads a "lat,lon" pair or a full plus code. It returns nil
// when the value is empty, malformed, or outside box.
func ParseCoordinate(raw string, box BoundingBox) *models.Coordinate {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	var lat, lon float64
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return nil
		}
		var err error
		if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
			return nil
		}
		if lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
			return nil
		}
	} else {
		var err error
		if lat, lon, err = DecodePlusCode(s); err != nil {
			return nil
		}
	}

	if !box.Contains(lat, lon) {
		return nil
	}
	return &models.Coordinate{Lat: lat, Lon: lon}
}
