package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"absensi/internal/model"
)

var wib = time.FixedZone("WIB", 7*3600)

func records() []*model.AttendanceRecord {
	return []*model.AttendanceRecord{
		{
			ID: "1", Name: "Pak Guru", Email: "guru@example.com", Status: model.StatusPresent,
			CreatedAt: time.Date(2026, 10, 17, 0, 15, 0, 0, time.UTC), DateStr: "2026-10-17",
			Location: &model.Location{Lat: -6.175392, Lng: 106.827153},
		},
		{
			ID: "2", Name: "Bu, Dewi", Email: "dewi@example.com", Status: model.StatusOffSite,
			CreatedAt: time.Date(2026, 10, 16, 2, 0, 0, 0, time.UTC), DateStr: "2026-10-16",
		},
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2026-10-01", "2026-10-17", "csv"); got != "absensi_2026-10-01_2026-10-17.csv" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records(), wib); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		Header,
		{"Pak Guru", "guru@example.com", "Hadir", "2026-10-17", "07.15", "-6.175392", "106.827153"},
		{"Bu, Dewi", "dewi@example.com", "Dinas Luar", "2026-10-16", "09.00", "", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %q\nwant %q", rows, want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, wib); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Nama,Email,Status,Tanggal,Waktu,Latitude,Longitude" {
		t.Fatalf("empty export = %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, records(), wib); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], Header) {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][4] != "07.15" || rows[1][5] != "-6.175392" {
		t.Fatalf("first row = %v", rows[1])
	}
	// Trailing empty cells are dropped by GetRows.
	if len(rows[2]) != 5 || rows[2][2] != "Dinas Luar" {
		t.Fatalf("second row = %v", rows[2])
	}
}
