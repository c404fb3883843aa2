package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"absensi/internal/model"
)

type CredentialStore struct {
	coll *mongo.Collection
}

func NewCredentialStore(ctx context.Context, db *MongoDB) (*CredentialStore, error) {
	coll := db.Collection("credentials")

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, fmt.Errorf("create credentials indexes: %w", err)
	}

	return &CredentialStore{coll: coll}, nil
}

func (s *CredentialStore) CreateCredential(ctx context.Context, c *model.Credential) error {
	_, err := s.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// CredentialByEmail returns the credential for email, or nil if not found.
func (s *CredentialStore) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var c model.Credential
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &c, nil
}
