package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

const preferencesCollection = "notification_preferences"

// preferencesDoc is the persistence shape of UserPreferences.
type preferencesDoc struct {
	UserID          string          `bson:"_id"`
	Categories      map[string]bool `bson:"categories"`
	QuietHours      QuietHours      `bson:"quiet_hours"`
	FrequencyLimits FrequencyLimits `bson:"frequency_limits"`
	DeliveryMethods DeliveryMethods `bson:"delivery_methods"`
	MinPriority     int             `bson:"min_priority"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

func toPreferencesDoc(p UserPreferences) preferencesDoc {
	cats := make(map[string]bool, len(p.Categories))
	for k, v := range p.Categories {
		cats[string(k)] = v
	}
	return preferencesDoc{
		UserID:          p.UserID,
		Categories:      cats,
		QuietHours:      p.QuietHours,
		FrequencyLimits: p.FrequencyLimits,
		DeliveryMethods: p.DeliveryMethods,
		MinPriority:     int(p.MinPriority),
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d preferencesDoc) toPreferences() UserPreferences {
	cats := make(map[notification.Category]bool, len(d.Categories))
	for k, v := range d.Categories {
		cats[notification.Category(k)] = v
	}
	return UserPreferences{
		UserID:          d.UserID,
		Categories:      cats,
		QuietHours:      d.QuietHours,
		FrequencyLimits: d.FrequencyLimits,
		DeliveryMethods: d.DeliveryMethods,
		MinPriority:     notification.Priority(d.MinPriority),
		UpdatedAt:       d.UpdatedAt,
	}
}

// MongoStorage is a MongoDB-backed implementation of the Storage interface.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates a preferences storage backed by the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(preferencesCollection)}
}

func (s *MongoStorage) Get(ctx context.Context, userID string) (*UserPreferences, error) {
	var doc preferencesDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs := doc.toPreferences()
	return &prefs, nil
}

func (s *MongoStorage) Put(ctx context.Context, prefs UserPreferences) error {
	if prefs.UserID == "" {
		return ErrUserIDRequired
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": prefs.UserID},
		toPreferencesDoc(prefs),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}
