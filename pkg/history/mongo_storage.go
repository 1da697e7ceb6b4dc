package history

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

const historyCollection = "notification_history"

// historyDoc is the persistence shape of a notification record.
type historyDoc struct {
	ID                string         `bson:"_id"`
	UserID            string         `bson:"user_id"`
	Title             string         `bson:"title"`
	Body              string         `bson:"body"`
	Category          string         `bson:"category"`
	Priority          int            `bson:"priority"`
	Data              map[string]any `bson:"data,omitempty"`
	ChannelsAttempted []string       `bson:"channels_attempted,omitempty"`
	CreatedAt         time.Time      `bson:"created_at"`
	SentAt            *time.Time     `bson:"sent_at,omitempty"`
	ReadAt            *time.Time     `bson:"read_at,omitempty"`
}

func toHistoryDoc(n notification.Notification) historyDoc {
	return historyDoc{
		ID:                n.ID,
		UserID:            n.UserID,
		Title:             n.Title,
		Body:              n.Body,
		Category:          string(n.Category),
		Priority:          int(n.Priority),
		Data:              n.Data,
		ChannelsAttempted: n.ChannelsAttempted,
		CreatedAt:         n.CreatedAt,
		SentAt:            n.SentAt,
		ReadAt:            n.ReadAt,
	}
}

func (d historyDoc) toNotification() notification.Notification {
	return notification.Notification{
		ID:                d.ID,
		UserID:            d.UserID,
		Title:             d.Title,
		Body:              d.Body,
		Category:          notification.Category(d.Category),
		Priority:          notification.Priority(d.Priority),
		Data:              d.Data,
		ChannelsAttempted: d.ChannelsAttempted,
		CreatedAt:         d.CreatedAt,
		SentAt:            d.SentAt,
		ReadAt:            d.ReadAt,
	}
}

// MongoStorage is a MongoDB-backed implementation of the Storage interface.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates a history storage backed by the given database
// and ensures the user and retention indexes exist.
func NewMongoStorage(ctx context.Context, db *mongo.Database) (*MongoStorage, error) {
	coll := db.Collection(historyCollection)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create history indexes: %w", err)
	}

	return &MongoStorage{coll: coll}, nil
}

func (s *MongoStorage) Append(ctx context.Context, n notification.Notification) error {
	if _, err := s.coll.InsertOne(ctx, toHistoryDoc(n)); err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, id string) (*notification.Notification, error) {
	var doc historyDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	n := doc.toNotification()
	return &n, nil
}

func (s *MongoStorage) List(ctx context.Context, userID string, opts ListOptions) ([]notification.Notification, error) {
	filter := bson.M{"user_id": userID}
	if opts.Category != "" {
		filter["category"] = string(opts.Category)
	}
	if opts.UnreadOnly {
		filter["read_at"] = nil
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toNotification())
	}
	return out, nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, id string, at time.Time) (*notification.Notification, error) {
	var doc historyDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Already read or missing; fall back to a plain lookup so an
			// idempotent re-read returns the stored record.
			return s.Get(ctx, id)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	n := doc.toNotification()
	return &n, nil
}

func (s *MongoStorage) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all read: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func (s *MongoStorage) CountUnread(ctx context.Context, userID string) (notification.BadgeCounts, error) {
	counts := notification.BadgeCounts{
		ByCategory: make(map[notification.Category]int),
		ByPriority: make(map[notification.Priority]int),
	}

	cur, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "read_at": nil}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"category": "$category", "priority": "$priority"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return counts, fmt.Errorf("failed to count unread: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Category string `bson:"category"`
			Priority int    `bson:"priority"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return counts, fmt.Errorf("failed to decode unread counts: %w", err)
	}

	for _, r := range rows {
		counts.Total += r.Count
		counts.ByCategory[notification.Category(r.ID.Category)] += r.Count
		counts.ByPriority[notification.Priority(r.ID.Priority)] += r.Count
	}
	return counts, nil
}

func (s *MongoStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return int(res.DeletedCount), nil
}
