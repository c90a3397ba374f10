// Package docstore implements the repository port on MongoDB. Counters are
// moved with $inc and likes are upserted, so concurrent writers never lose
// updates or create duplicates.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio/internal/models"
	"folio/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
	likesCollection    = "likes"
)

// DB is a connected MongoDB database holding the blog collections.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials uri, pings the server and makes sure the indexes exist.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := &DB{client: client, database: client.Database(database)}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		likesCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, idx := range indexes {
		if _, err := db.database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

// Ping checks that the server is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

// Disconnect closes the client.
func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// Drop removes the whole database. Tests use it for cleanup.
func (db *DB) Drop(ctx context.Context) error {
	return db.database.Drop(ctx)
}

// Store exposes db through the repository interfaces.
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Users:    &userRepo{db.database.Collection(usersCollection)},
		Posts:    &postRepo{db.database.Collection(postsCollection)},
		Comments: &commentRepo{db.database.Collection(commentsCollection)},
		Likes:    &likeRepo{db.database.Collection(likesCollection)},
	}
}

// translate maps driver errors onto the AppError taxonomy.
func translate(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFoundError(resource, id)
	}
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflictError(fmt.Sprintf("%s %v already exists", resource, id))
	}
	return fmt.Errorf("%s query failed: %w", resource, err)
}

// likeID is the document id of a like, which makes the pair unique.
func likeID(postID, userID string) string {
	return postID + ":" + userID
}
