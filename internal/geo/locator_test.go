package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"absensi/internal/model"
)

func TestAcquireReported(t *testing.T) {
	pos := Acquire(context.Background(), ParseReported("-8.2192", "114.3691"), DefaultTimeout)
	if pos == nil || pos.Lat != -8.2192 || pos.Lng != 114.3691 {
		t.Fatalf("unexpected position: %+v", pos)
	}
}

func TestAcquireUnavailable(t *testing.T) {
	cases := map[string]Locator{
		"nil locator":   nil,
		"not reported":  ParseReported("", ""),
		"half reported": ParseReported("-8.2", ""),
		"garbage":       ParseReported("north", "east"),
		"out of range":  ParseReported("123", "10"),
		"denied": LocatorFunc(func(context.Context) (*model.Location, error) {
			return nil, errors.New("permission denied")
		}),
		"nil position": LocatorFunc(func(context.Context) (*model.Location, error) {
			return nil, nil
		}),
	}
	for name, loc := range cases {
		t.Run(name, func(t *testing.T) {
			if pos := Acquire(context.Background(), loc, DefaultTimeout); pos != nil {
				t.Fatalf("expected nil, got %+v", pos)
			}
		})
	}
}

func TestAcquireTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := LocatorFunc(func(context.Context) (*model.Location, error) {
		<-release
		return &model.Location{Lat: 1, Lng: 1}, nil
	})

	start := time.Now()
	if pos := Acquire(context.Background(), slow, 20*time.Millisecond); pos != nil {
		t.Fatalf("expected nil after timeout, got %+v", pos)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Acquire blocked for %s", elapsed)
	}
}

func TestAcquireCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocking := LocatorFunc(func(ctx context.Context) (*model.Location, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if pos := Acquire(ctx, blocking, DefaultTimeout); pos != nil {
		t.Fatalf("expected nil for cancelled context, got %+v", pos)
	}
}
