package model

import (
	"fmt"
	"time"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Hadir"
	StatusLate    AttendanceStatus = "Terlambat"
	StatusLeave   AttendanceStatus = "Izin"
	StatusSick    AttendanceStatus = "Sakit"
	StatusRemote  AttendanceStatus = "WFH"
	StatusOffSite AttendanceStatus = "Dinas Luar"
)

// Check-ins at or after 07:30 local time are late.
const (
	LateThresholdHour   = 7
	LateThresholdMinute = 30
)

// DeriveStatus returns the automatic status for a check-in captured at t.
// t must already be in the local time zone.
func DeriveStatus(t time.Time) AttendanceStatus {
	h, m := t.Hour(), t.Minute()
	if h > LateThresholdHour || (h == LateThresholdHour && m >= LateThresholdMinute) {
		return StatusLate
	}
	return StatusPresent
}

// Known reports whether s is one of the six statuses.
func (s AttendanceStatus) Known() bool {
	switch s {
	case StatusPresent, StatusLate, StatusLeave, StatusSick, StatusRemote, StatusOffSite:
		return true
	}
	return false
}

// Overridable reports whether a user may pick s by hand. Present and late
// are only ever derived from the clock.
func (s AttendanceStatus) Overridable() bool {
	switch s {
	case StatusLeave, StatusRemote, StatusOffSite:
		return true
	}
	return false
}

// Badge is the colour class used for status badges.
func (s AttendanceStatus) Badge() string {
	switch s {
	case StatusPresent:
		return "green"
	case StatusLate:
		return "yellow"
	default:
		return "blue"
	}
}

type Location struct {
	Lat float64 `bson:"lat" json:"lat" firestore:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `bson:"lng" json:"lng" firestore:"lng" validate:"gte=-180,lte=180"`
}

// MapURL links the coordinate on Google Maps.
func (l Location) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", l.Lat, l.Lng)
}

// AttendanceRecord is one check-in. Records are never updated or deleted.
type AttendanceRecord struct {
	ID           string           `bson:"_id,omitempty" json:"id" firestore:"-"`
	UID          string           `bson:"uid" json:"uid" firestore:"uid" validate:"required"`
	Name         string           `bson:"name" json:"name" firestore:"name"`
	Email        string           `bson:"email" json:"email" firestore:"email"`
	Status       AttendanceStatus `bson:"status" json:"status" firestore:"status" validate:"required"`
	ManualStatus bool             `bson:"manualStatus" json:"manualStatus" firestore:"manualStatus"`
	Location     *Location        `bson:"location" json:"location" firestore:"location"`
	CreatedAt    time.Time        `bson:"createdAt" json:"createdAt" firestore:"createdAt,serverTimestamp"`
	DateStr      string           `bson:"dateStr" json:"dateStr" firestore:"dateStr" validate:"required,datetime=2006-01-02"`
}

// Validate checks the fields every stored record must carry. Records that
// fail are quarantined by the stores instead of being returned.
func (r *AttendanceRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid attendance record %q: %w", r.ID, err)
	}
	return nil
}
