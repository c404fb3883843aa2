package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"absensi/internal/model"
)

const sheetName = "Absensi"

// WriteXLSX writes the same columns as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, records []*model.AttendanceRecord, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, i+2, Row(r, loc)); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "B", 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("set row %d: %w", n, err)
	}
	return nil
}
