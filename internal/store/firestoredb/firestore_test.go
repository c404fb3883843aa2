package firestoredb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"absensi/internal/model"
	"absensi/internal/store"
)

// testDB needs a running emulator; FIRESTORE_EMULATOR_HOST routes the
// client to it.
func testDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	db, err := New(context.Background(), "absensi-test-"+uuid.NewString()[:8], "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close(context.Background()) })
	return db
}

func TestAttendanceStore(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewAttendanceStore(db)

	base := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		rec := &model.AttendanceRecord{UID: "u1", Status: model.StatusLate, CreatedAt: at, DateStr: at.Format(time.DateOnly)}
		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, _, err := db.Collection("attendance").Add(ctx, map[string]any{"status": "Hadir", "dateStr": "2026-10-16"}); err != nil {
		t.Fatalf("add broken: %v", err)
	}

	got, err := s.ByDateRange(ctx, "2026-10-15", "2026-10-16")
	if err != nil {
		t.Fatalf("ByDateRange: %v", err)
	}
	if len(got) != 2 || got[0].DateStr != "2026-10-16" || got[0].ID == "" {
		t.Fatalf("range = %+v", got)
	}

	recent, err := s.Recent(ctx, "u1", 2)
	if err != nil || len(recent) != 2 || recent[0].DateStr != "2026-10-17" {
		t.Fatalf("Recent = %v, %v", recent, err)
	}
}

func TestProfileAndCredentials(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	profiles := NewProfileStore(db)
	if p, err := profiles.Profile(ctx, "nobody"); err != nil || p != nil {
		t.Fatalf("missing profile = %v, %v", p, err)
	}
	if err := profiles.SaveProfile(ctx, &model.UserProfile{UID: "u1", Email: "a@example.com", Role: model.RoleTeacher}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	p, err := profiles.Profile(ctx, "u1")
	if err != nil || p.UID != "u1" || p.CreatedAt.IsZero() {
		t.Fatalf("Profile = %+v, %v", p, err)
	}

	creds := NewCredentialStore(db)
	c := &model.Credential{UID: "u1", Email: "a@example.com", PasswordHash: "h"}
	if err := creds.CreateCredential(ctx, c); err != nil {
		t.Fatalf("CreateCredential: %v", err)
	}
	if err := creds.CreateCredential(ctx, c); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate err = %v", err)
	}
	got, err := creds.CredentialByEmail(ctx, "a@example.com")
	if err != nil || got == nil || got.UID != "u1" {
		t.Fatalf("CredentialByEmail = %+v, %v", got, err)
	}
	if got, err := creds.CredentialByEmail(ctx, "nobody@example.com"); err != nil || got != nil {
		t.Fatalf("missing credential = %+v, %v", got, err)
	}
}

func TestCredentialEmailWithSlash(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	creds := NewCredentialStore(db)

	c := &model.Credential{UID: "u2", Email: "guru/bk@example.com", PasswordHash: "h"}
	if err := creds.CreateCredential(ctx, c); err != nil {
		t.Fatalf("CreateCredential: %v", err)
	}
	got, err := creds.CredentialByEmail(ctx, "guru/bk@example.com")
	if err != nil || got == nil || got.UID != "u2" {
		t.Fatalf("CredentialByEmail = %+v, %v", got, err)
	}

	// Same email under another uid is still a duplicate.
	other := &model.Credential{UID: "u3", Email: "guru/bk@example.com", PasswordHash: "h"}
	if err := creds.CreateCredential(ctx, other); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate err = %v", err)
	}
	if snap, err := db.Collection("credentials").Doc("u3").Get(ctx); err == nil && snap.Exists() {
		t.Fatalf("rejected credential was written")
	}
}
