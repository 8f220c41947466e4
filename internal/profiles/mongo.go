package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scavhunt/scavhunt/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store using a MongoDB collection keyed by userId.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a store for the given collection
func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

// EnsureIndexes creates the unique userId index Create relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("userId_unique"),
	})
	if err != nil {
		return fmt.Errorf("create userId index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) Create(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	stored := p.Clone()
	stored.CreatedAt = now()
	stored.UpdatedAt = stored.CreatedAt
	if _, err := s.col.InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	return stored, nil
}

func (s *MongoStore) Put(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	filter := bson.M{"userId": p.UserID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var updated models.UserProfile
	if err := s.col.FindOneAndUpdate(ctx, filter, putUpdate(p, now()), opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// putUpdate builds the upsert document for Put. A zero CreatedAt is only
// filled in when the upsert inserts.
func putUpdate(p *models.UserProfile, ts time.Time) bson.M {
	set := bson.M{
		"displayName": p.DisplayName,
		"updatedAt":   ts,
	}
	unset := bson.M{}
	if p.Email != "" {
		set["email"] = p.Email
	} else {
		unset["email"] = ""
	}
	if p.AvatarURL != "" {
		set["avatarUrl"] = p.AvatarURL
	} else {
		unset["avatarUrl"] = ""
	}

	update := bson.M{"$set": set}
	if p.CreatedAt.IsZero() {
		update["$setOnInsert"] = bson.M{"createdAt": ts}
	} else {
		set["createdAt"] = p.CreatedAt.UTC()
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

// Mongo stores milliseconds; truncating keeps returned values equal to
// what a later Get decodes.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
