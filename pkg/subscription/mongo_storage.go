package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const subscriptionsCollection = "push_subscriptions"

// subscriptionDoc is the persistence shape of a Subscription.
type subscriptionDoc struct {
	ID         string            `bson:"_id"`
	UserID     string            `bson:"user_id"`
	Platform   string            `bson:"platform"`
	Endpoint   string            `bson:"endpoint"`
	Keys       *Keys             `bson:"keys,omitempty"`
	DeviceInfo map[string]string `bson:"device_info,omitempty"`
	IsActive   bool              `bson:"is_active"`
	CreatedAt  time.Time         `bson:"created_at"`
	LastUsedAt time.Time         `bson:"last_used_at"`
}

func toDoc(sub Subscription) subscriptionDoc {
	return subscriptionDoc{
		ID:         sub.ID,
		UserID:     sub.UserID,
		Platform:   string(sub.Platform),
		Endpoint:   sub.Endpoint,
		Keys:       sub.Keys,
		DeviceInfo: sub.DeviceInfo,
		IsActive:   sub.IsActive,
		CreatedAt:  sub.CreatedAt,
		LastUsedAt: sub.LastUsedAt,
	}
}

func (d subscriptionDoc) toSubscription() Subscription {
	return Subscription{
		ID:         d.ID,
		UserID:     d.UserID,
		Platform:   Platform(d.Platform),
		Endpoint:   d.Endpoint,
		Keys:       d.Keys,
		DeviceInfo: d.DeviceInfo,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
		LastUsedAt: d.LastUsedAt,
	}
}

// MongoStorage is a MongoDB-backed implementation of the Storage interface.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates a subscription storage backed by the given
// database and ensures the endpoint and user indexes exist.
func NewMongoStorage(ctx context.Context, db *mongo.Database) (*MongoStorage, error) {
	coll := db.Collection(subscriptionsCollection)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "endpoint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription indexes: %w", err)
	}

	return &MongoStorage{coll: coll}, nil
}

func (s *MongoStorage) Put(ctx context.Context, sub Subscription) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": sub.ID},
		toDoc(sub),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store subscription: %w", err)
	}
	return nil
}

func (s *MongoStorage) GetByEndpoint(ctx context.Context, endpoint string) (*Subscription, error) {
	var doc subscriptionDoc
	err := s.coll.FindOne(ctx, bson.M{"endpoint": endpoint}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	sub := doc.toSubscription()
	return &sub, nil
}

func (s *MongoStorage) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []subscriptionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}

	out := make([]Subscription, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSubscription())
	}
	return out, nil
}

func (s *MongoStorage) Deactivate(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStorage) Touch(ctx context.Context, id string, usedAt time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_used_at": usedAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to touch subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
