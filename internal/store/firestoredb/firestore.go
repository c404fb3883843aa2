// Package firestoredb implements the stores on Cloud Firestore.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type DB struct {
	client *firestore.Client
}

// New opens a Firestore client through the Firebase admin SDK. An empty
// credentialsFile uses application default credentials.
func New(ctx context.Context, projectID, credentialsFile string) (*DB, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}

	slog.Info("connected to firestore", "project", projectID)
	return &DB{client: client}, nil
}

func (d *DB) Collection(name string) *firestore.CollectionRef {
	return d.client.Collection(name)
}

func (d *DB) RunTransaction(ctx context.Context, fn func(context.Context, *firestore.Transaction) error) error {
	return d.client.RunTransaction(ctx, fn)
}

// Ping reads at most one document to check the connection.
func (d *DB) Ping(ctx context.Context) error {
	iter := d.client.Collection("users").Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("ping firestore: %w", err)
	}
	return nil
}

func (d *DB) Close(context.Context) error {
	return d.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
