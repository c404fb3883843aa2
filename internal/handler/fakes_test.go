package handler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"absensi/internal/model"
	"absensi/internal/store"
)

type memAttendance struct {
	mu      sync.Mutex
	records []*model.AttendanceRecord
	readErr error
}

func (m *memAttendance) Create(_ context.Context, r *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = fmt.Sprintf("rec-%d", len(m.records)+1)
	cp := *r
	m.records = append(m.records, &cp)
	return nil
}

func (m *memAttendance) Recent(_ context.Context, uid string, limit int) ([]*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []*model.AttendanceRecord
	for _, r := range m.records {
		if r.UID == uid {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAttendance) TodayRecord(_ context.Context, uid, date string) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UID == uid && r.DateStr == date {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memAttendance) ByDateRange(_ context.Context, from, to string) ([]*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []*model.AttendanceRecord
	for _, r := range m.records {
		if r.DateStr >= from && r.DateStr <= to {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateStr != out[j].DateStr {
			return out[i].DateStr > out[j].DateStr
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]*model.UserProfile
}

func (m *memProfiles) Profile(_ context.Context, uid string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[uid]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) SaveProfile(_ context.Context, p *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UID] = &cp
	return nil
}

type memCredentials struct {
	mu      sync.Mutex
	byEmail map[string]*model.Credential
}

func (m *memCredentials) CreateCredential(_ context.Context, c *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[c.Email]; ok {
		return store.ErrDuplicate
	}
	m.byEmail[c.Email] = c
	return nil
}

func (m *memCredentials) CredentialByEmail(_ context.Context, email string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}
