package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"absensi/internal/geo"
	"absensi/internal/model"
	"absensi/internal/session"
)

// HistoryLimit is how many recent records the check-in view shows.
const HistoryLimit = 5

var (
	ErrInvalidStatus    = errors.New("status cannot be chosen manually")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNoSession        = errors.New("not signed in")
)

type AttendanceStore interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	Recent(ctx context.Context, uid string, limit int) ([]*model.AttendanceRecord, error)
	TodayRecord(ctx context.Context, uid, date string) (*model.AttendanceRecord, error)
	ByDateRange(ctx context.Context, from, to string) ([]*model.AttendanceRecord, error)
}

type AttendanceOptions struct {
	Location   *time.Location
	Now        func() time.Time
	OnePerDay  bool
	GeoTimeout time.Duration
	Logger     *slog.Logger
}

type AttendanceService struct {
	store      AttendanceStore
	loc        *time.Location
	now        func() time.Time
	onePerDay  bool
	geoTimeout time.Duration
	logger     *slog.Logger
}

func NewAttendanceService(store AttendanceStore, opts AttendanceOptions) *AttendanceService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = geo.DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AttendanceService{
		store:      store,
		loc:        opts.Location,
		now:        opts.Now,
		onePerDay:  opts.OnePerDay,
		geoTimeout: opts.GeoTimeout,
		logger:     opts.Logger,
	}
}

type CheckInRequest struct {
	// Override is an explicitly chosen status; empty means derive it from the clock.
	Override model.AttendanceStatus
	Locator  geo.Locator
}

type CheckInResult struct {
	Record  *model.AttendanceRecord
	History []*model.AttendanceRecord
}

// CheckIn writes one attendance record for the session's user and returns
// it together with the refreshed history.
func (s *AttendanceService) CheckIn(ctx context.Context, sess *session.Session, req CheckInRequest) (*CheckInResult, error) {
	if sess == nil || sess.Profile == nil {
		return nil, ErrNoSession
	}
	if req.Override != "" && !req.Override.Overridable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Override)
	}

	now := s.now().In(s.loc)
	date := model.DateString(now, s.loc)

	if s.onePerDay {
		existing, err := s.store.TodayRecord(ctx, sess.Identity.UID, date)
		if err != nil {
			return nil, fmt.Errorf("get today record: %w", err)
		}
		if existing != nil {
			return nil, ErrAlreadyCheckedIn
		}
	}

	pos := geo.Acquire(ctx, req.Locator, s.geoTimeout)

	status := req.Override
	if status == "" {
		status = model.DeriveStatus(now)
	}

	name := sess.Profile.Name
	if name == "" {
		name = sess.Identity.Email
	}

	record := &model.AttendanceRecord{
		UID:          sess.Identity.UID,
		Name:         name,
		Email:        sess.Identity.Email,
		Status:       status,
		ManualStatus: req.Override != "",
		Location:     pos,
		CreatedAt:    now,
		DateStr:      date,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.logger.InfoContext(ctx, "checked in",
		"uid", record.UID, "status", record.Status, "manual", record.ManualStatus, "located", pos != nil)

	history, err := s.History(ctx, record.UID)
	if err != nil {
		s.logger.ErrorContext(ctx, "fetch history failed", "uid", record.UID, "error", err)
	}
	return &CheckInResult{Record: record, History: history}, nil
}

// History returns the user's most recent records, newest first.
func (s *AttendanceService) History(ctx context.Context, uid string) ([]*model.AttendanceRecord, error) {
	records, err := s.store.Recent(ctx, uid, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(records) > HistoryLimit {
		records = records[:HistoryLimit]
	}
	return records, nil
}

// Today is the current local date, YYYY-MM-DD.
func (s *AttendanceService) Today() string {
	return model.DateString(s.now(), s.loc)
}
