// Package export renders attendance records as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"absensi/internal/model"
)

// Header is the column row shared by every export format.
var Header = []string{"Nama", "Email", "Status", "Tanggal", "Waktu", "Latitude", "Longitude"}

// FileName is absensi_<start>_<end>.<ext>.
func FileName(start, end, ext string) string {
	return fmt.Sprintf("absensi_%s_%s.%s", start, end, ext)
}

// Row flattens a record into export columns. Coordinates are empty when
// the record has no location.
func Row(r *model.AttendanceRecord, loc *time.Location) []string {
	lat, lng := "", ""
	if r.Location != nil {
		lat = strconv.FormatFloat(r.Location.Lat, 'f', -1, 64)
		lng = strconv.FormatFloat(r.Location.Lng, 'f', -1, 64)
	}
	return []string{
		r.Name,
		r.Email,
		string(r.Status),
		r.DateStr,
		model.TimeOfDay(r.CreatedAt, loc),
		lat,
		lng,
	}
}

// WriteCSV writes the header followed by one line per record.
func WriteCSV(w io.Writer, records []*model.AttendanceRecord, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r, loc)); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
