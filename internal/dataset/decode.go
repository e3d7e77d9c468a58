package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte("PK\x03\x04")
)

// Export is a decoded CSV export.
type Export struct {
	Records []models.Record
	// Columns holds the trimmed header names in file order.
	Columns []string
}

// HasColumn reports whether the export carried the named header.
func (e *Export) HasColumn(name string) bool {
	return e != nil && slices.Contains(e.Columns, name)
}

// Decode parses a CSV export into records. Header names are trimmed before
// lookup; the four identity columns are required. Rows with every cell blank
// are skipped, and RecordIDs number the remaining rows from zero.
func Decode(source string, body []byte) (*Export, error) {
	body = bytes.TrimPrefix(body, utf8BOM)
	if bytes.HasPrefix(body, zipMagic) {
		return nil, NewSourceError(ErrorBadData, source,
			"binary spreadsheet exports are not supported; export as CSV", nil)
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, NewSourceError(ErrorBadData, source, "export is empty", nil)
	}
	if err != nil {
		return nil, NewSourceError(ErrorBadData, source, "read header", err)
	}

	names := make([]string, 0, len(header))
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		names = append(names, name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, name := range models.RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, NewSourceError(ErrorMissingColumn, source,
			"missing required columns: "+strings.Join(missing, ", "), nil)
	}

	var records []models.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewSourceError(ErrorBadData, source, "read row", err)
		}
		if blankRow(row) {
			continue
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, models.Record{
			ID:             id.RecordID(len(records)),
			Timestamp:      field(models.ColumnTimestamp),
			County:         field(models.ColumnCounty),
			NationalID:     field(models.ColumnNationalID),
			Phone:          field(models.ColumnPhone),
			GeoCoordinates: field(models.ColumnGeo),
			Gender:         field(models.ColumnGender),
			Age:            field(models.ColumnAge),
		})
	}
	return &Export{Records: records, Columns: names}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
