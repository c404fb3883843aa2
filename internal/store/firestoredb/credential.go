package firestoredb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"absensi/internal/model"
	"absensi/internal/store"
)

// CredentialStore keys credentials by uid. Email uniqueness is held by a
// claim document in credential_emails, keyed by a hash of the email since
// emails may contain characters that are not valid in a document path.
type CredentialStore struct {
	db     *DB
	coll   *firestore.CollectionRef
	claims *firestore.CollectionRef
}

func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{
		db:     db,
		coll:   db.Collection("credentials"),
		claims: db.Collection("credential_emails"),
	}
}

func emailKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// CreateCredential writes the claim and the credential in one transaction.
func (s *CredentialStore) CreateCredential(ctx context.Context, c *model.Credential) error {
	claim := s.claims.Doc(emailKey(c.Email))
	doc := s.coll.Doc(c.UID)
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(claim, map[string]any{"uid": c.UID, "email": c.Email}); err != nil {
			return err
		}
		return tx.Create(doc, c)
	})
	if isAlreadyExists(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	iter := s.coll.Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	var c model.Credential
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &c, nil
}
