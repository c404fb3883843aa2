package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"absensi/internal/model"
)

// AttendanceStore queries the attendance collection. The range query needs
// a composite index on (dateStr desc, createdAt desc).
type AttendanceStore struct {
	coll *firestore.CollectionRef
}

func NewAttendanceStore(db *DB) *AttendanceStore {
	return &AttendanceStore{coll: db.Collection("attendance")}
}

func (s *AttendanceStore) Create(ctx context.Context, record *model.AttendanceRecord) error {
	ref, _, err := s.coll.Add(ctx, record)
	if err != nil {
		return fmt.Errorf("add attendance: %w", err)
	}
	record.ID = ref.ID
	return nil
}

func (s *AttendanceStore) Recent(ctx context.Context, uid string, limit int) ([]*model.AttendanceRecord, error) {
	q := s.coll.Where("uid", "==", uid).OrderBy("createdAt", firestore.Desc).Limit(limit)
	return collect(ctx, q)
}

func (s *AttendanceStore) TodayRecord(ctx context.Context, uid, date string) (*model.AttendanceRecord, error) {
	q := s.coll.Where("uid", "==", uid).Where("dateStr", "==", date).Limit(1)
	records, err := collect(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *AttendanceStore) ByDateRange(ctx context.Context, from, to string) ([]*model.AttendanceRecord, error) {
	q := s.coll.
		Where("dateStr", ">=", from).
		Where("dateStr", "<=", to).
		OrderBy("dateStr", firestore.Desc).
		OrderBy("createdAt", firestore.Desc)
	return collect(ctx, q)
}

func collect(ctx context.Context, q firestore.Query) ([]*model.AttendanceRecord, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	results := []*model.AttendanceRecord{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query attendance: %w", err)
		}
		var record model.AttendanceRecord
		if err := snap.DataTo(&record); err != nil {
			slog.WarnContext(ctx, "quarantined attendance document", "id", snap.Ref.ID, "error", err)
			continue
		}
		record.ID = snap.Ref.ID
		if err := record.Validate(); err != nil {
			slog.WarnContext(ctx, "quarantined attendance document", "id", snap.Ref.ID, "error", err)
			continue
		}
		results = append(results, &record)
	}
	return results, nil
}
