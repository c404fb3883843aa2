// Package geo acquires the optional device location attached to a check-in.
package geo

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"absensi/internal/model"
)

// DefaultTimeout bounds how long a check-in waits for a position.
const DefaultTimeout = 5 * time.Second

var ErrUnavailable = errors.New("location unavailable")

type Locator interface {
	Locate(ctx context.Context) (*model.Location, error)
}

type LocatorFunc func(ctx context.Context) (*model.Location, error)

func (f LocatorFunc) Locate(ctx context.Context) (*model.Location, error) { return f(ctx) }

// Acquire asks loc for a position and gives up after timeout or when ctx is
// cancelled. Every failure yields nil: a missing location never fails the
// surrounding action.
func Acquire(ctx context.Context, loc Locator, timeout time.Duration) *model.Location {
	if loc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		pos *model.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := loc.Locate(ctx)
		done <- result{pos, err}
	}()

	select {
	case <-ctx.Done():
		slog.DebugContext(ctx, "location timed out", "error", ctx.Err())
		return nil
	case r := <-done:
		if r.err != nil {
			slog.DebugContext(ctx, "location unavailable", "error", r.err)
			return nil
		}
		if r.pos == nil || !valid(*r.pos) {
			return nil
		}
		return r.pos
	}
}

func valid(l model.Location) bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Reported is a position measured by the client device (browser
// geolocation) and sent with the check-in request.
type Reported struct {
	Lat, Lng *float64
}

// ParseReported reads decimal coordinates. Empty or unparsable values leave
// the position unreported.
func ParseReported(lat, lng string) Reported {
	var r Reported
	la, errLat := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	ln, errLng := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if errLat == nil && errLng == nil {
		r.Lat, r.Lng = &la, &ln
	}
	return r
}

func (r Reported) Locate(context.Context) (*model.Location, error) {
	if r.Lat == nil || r.Lng == nil {
		return nil, ErrUnavailable
	}
	return &model.Location{Lat: *r.Lat, Lng: *r.Lng}, nil
}
