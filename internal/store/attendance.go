package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"absensi/internal/model"
)

type AttendanceStore struct {
	coll *mongo.Collection
}

func NewAttendanceStore(ctx context.Context, db *MongoDB) (*AttendanceStore, error) {
	attendance := db.Collection("attendance")

	if _, err := attendance.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "dateStr", Value: 1}}},
		{Keys: bson.D{{Key: "dateStr", Value: -1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return nil, fmt.Errorf("create attendance indexes: %w", err)
	}

	return &AttendanceStore{coll: attendance}, nil
}

// Create inserts a new record and sets its ID. CreatedAt is filled with the
// server clock when the caller left it empty.
func (s *AttendanceStore) Create(ctx context.Context, record *model.AttendanceRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.ID = bson.NewObjectID().Hex()
	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		record.ID = ""
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// Recent returns the newest records of a user, newest first.
func (s *AttendanceStore) Recent(ctx context.Context, uid string, limit int) ([]*model.AttendanceRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return decodeRecords(ctx, cursor)
}

// TodayRecord returns a user's first record for the given date (YYYY-MM-DD), or nil if not found.
func (s *AttendanceStore) TodayRecord(ctx context.Context, uid, date string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := s.coll.FindOne(ctx, bson.M{"uid": uid, "dateStr": date}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &record, nil
}

// ByDateRange returns every record whose dateStr lies in [from, to],
// ordered by date then creation time, both descending.
func (s *AttendanceStore) ByDateRange(ctx context.Context, from, to string) ([]*model.AttendanceRecord, error) {
	filter := bson.M{"dateStr": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "dateStr", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return decodeRecords(ctx, cursor)
}

// decodeRecords drains the cursor, skipping documents that fail to decode
// or validate.
func decodeRecords(ctx context.Context, cursor *mongo.Cursor) ([]*model.AttendanceRecord, error) {
	defer cursor.Close(ctx)

	results := []*model.AttendanceRecord{}
	for cursor.Next(ctx) {
		var record model.AttendanceRecord
		if err := cursor.Decode(&record); err != nil {
			slog.WarnContext(ctx, "quarantined attendance document", "id", cursor.Current.Lookup("_id").String(), "error", err)
			continue
		}
		if err := record.Validate(); err != nil {
			slog.WarnContext(ctx, "quarantined attendance document", "id", record.ID, "error", err)
			continue
		}
		results = append(results, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return results, nil
}
