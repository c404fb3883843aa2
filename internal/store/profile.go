package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"absensi/internal/model"
)

type ProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore(db *MongoDB) *ProfileStore {
	return &ProfileStore{coll: db.Collection("users")}
}

// Profile returns the stored profile for uid, or nil if there is none.
func (s *ProfileStore) Profile(ctx context.Context, uid string) (*model.UserProfile, error) {
	var p model.UserProfile
	err := s.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.UID = uid
	if err := p.Validate(); err != nil {
		return nil, errors.Join(model.ErrMalformed, err)
	}
	return &p, nil
}

// SaveProfile writes the profile keyed by its UID, replacing any previous document.
func (s *ProfileStore) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.UID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
