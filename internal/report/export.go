package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"bizverify/internal/submission/models"
)

// exportHeader is the raw columns followed by the derived ones.
var exportHeader = []string{
	models.ColumnTimestamp,
	models.ColumnCounty,
	models.ColumnNationalID,
	models.ColumnPhone,
	models.ColumnGeo,
	models.ColumnGender,
	models.ColumnAge,
	"Normalized ID",
	"Normalized Phone",
	"Normalized County",
	"Duplicate (Manual)",
	"Duplicate (Strict)",
}

// ExportCSV writes the filtered view as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, f Filter, view View) error {
	set, err := s.Records(ctx, f, view)
	if err != nil {
		return err
	}
	return WriteCSV(w, set.Submissions)
}

// WriteCSV writes submissions with exportHeader.
func WriteCSV(w io.Writer, subs []models.Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, sub := range subs {
		rec := sub.Record
		row := []string{
			rec.Timestamp,
			rec.County,
			rec.NationalID,
			rec.Phone,
			rec.GeoCoordinates,
			rec.Gender,
			rec.Age,
			sub.NormalizedID,
			sub.NormalizedPhone,
			sub.County.Name,
			strconv.FormatBool(sub.DuplicateRaw),
			strconv.FormatBool(sub.DuplicateStrict),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
