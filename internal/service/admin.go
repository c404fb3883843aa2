package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"absensi/internal/model"
)

var ErrInvalidRange = errors.New("invalid date range")

type RangeReader interface {
	ByDateRange(ctx context.Context, from, to string) ([]*model.AttendanceRecord, error)
}

// DateRange is an inclusive range of YYYY-MM-DD dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Row is one line of the admin table.
type Row struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Email  string                 `json:"email"`
	Date   string                 `json:"date"`
	Time   string                 `json:"time"`
	Status model.AttendanceStatus `json:"status"`
	Badge  string                 `json:"badge"`
	MapURL string                 `json:"mapUrl,omitempty"`

	createdAt time.Time
}

type Dashboard struct {
	Range   DateRange                 `json:"range"`
	Stats   model.Stats               `json:"stats"`
	Rows    []Row                     `json:"rows"`
	Records []*model.AttendanceRecord `json:"-"`
}

type AdminService struct {
	store RangeReader
	loc   *time.Location
	now   func() time.Time
}

func NewAdminService(store RangeReader, loc *time.Location, now func() time.Time) *AdminService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &AdminService{store: store, loc: loc, now: now}
}

// ParseRange fills empty bounds with today and validates the format.
func (s *AdminService) ParseRange(start, end string) (DateRange, error) {
	today := model.DateString(s.now(), s.loc)
	r := DateRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if r.Start == "" {
		r.Start = today
	}
	if r.End == "" {
		r.End = today
	}
	for _, d := range []string{r.Start, r.End} {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return DateRange{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidRange, d)
		}
	}
	return r, nil
}

// Records fetches every record of the range, newest date first.
func (s *AdminService) Records(ctx context.Context, r DateRange) ([]*model.AttendanceRecord, error) {
	records, err := s.store.ByDateRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("fetch records %s..%s: %w", r.Start, r.End, err)
	}
	return records, nil
}

// Dashboard loads the range and builds the chart and table.
func (s *AdminService) Dashboard(ctx context.Context, r DateRange, sortKey string) (*Dashboard, error) {
	records, err := s.Records(ctx, r)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.row(rec))
	}
	SortRows(rows, sortKey)
	return &Dashboard{
		Range:   r,
		Stats:   model.Tally(records),
		Rows:    rows,
		Records: records,
	}, nil
}

func (s *AdminService) row(rec *model.AttendanceRecord) Row {
	row := Row{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		Date:      rec.DateStr,
		Time:      model.TimeOfDay(rec.CreatedAt, s.loc),
		Status:    rec.Status,
		Badge:     rec.Status.Badge(),
		createdAt: rec.CreatedAt,
	}
	if rec.Location != nil {
		row.MapURL = rec.Location.MapURL()
	}
	return row
}

// SortRows orders rows by name, date, time or status. Any other key keeps
// the query order. Sorting is stable.
func SortRows(rows []Row, key string) {
	var less func(a, b Row) bool
	switch key {
	case "name":
		less = func(a, b Row) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "date":
		less = func(a, b Row) bool { return a.Date > b.Date }
	case "time":
		less = func(a, b Row) bool { return a.createdAt.After(b.createdAt) }
	case "status":
		less = func(a, b Row) bool { return a.Status < b.Status }
	default:
		return
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
