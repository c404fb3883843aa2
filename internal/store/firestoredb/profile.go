package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"absensi/internal/model"
)

type ProfileStore struct {
	coll *firestore.CollectionRef
}

func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{coll: db.Collection("users")}
}

func (s *ProfileStore) Profile(ctx context.Context, uid string) (*model.UserProfile, error) {
	snap, err := s.coll.Doc(uid).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var p model.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, errors.Join(model.ErrMalformed, err)
	}
	p.UID = uid
	if err := p.Validate(); err != nil {
		return nil, errors.Join(model.ErrMalformed, err)
	}
	return &p, nil
}

// SaveProfile sets the users/{uid} document. A zero CreatedAt becomes the
// server timestamp.
func (s *ProfileStore) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	if _, err := s.coll.Doc(p.UID).Set(ctx, p); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}
