package schedule

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

const schedulesCollection = "scheduled_notifications"

type recurrenceDoc struct {
	Frequency  string     `bson:"frequency"`
	Interval   int        `bson:"interval,omitempty"`
	DaysOfWeek []int      `bson:"days_of_week,omitempty"`
	DayOfMonth int        `bson:"day_of_month,omitempty"`
	EndDate    *time.Time `bson:"end_date,omitempty"`
}

// scheduleDoc is the persistence shape of a ScheduledNotification.
type scheduleDoc struct {
	ID            string         `bson:"_id"`
	UserID        string         `bson:"user_id"`
	TemplateID    string         `bson:"template_id,omitempty"`
	Title         string         `bson:"title"`
	Body          string         `bson:"body"`
	Category      string         `bson:"category"`
	Priority      int            `bson:"priority"`
	Data          map[string]any `bson:"data,omitempty"`
	SendAt        time.Time      `bson:"send_at"`
	Recur         recurrenceDoc  `bson:"recurrence"`
	Status        string         `bson:"status"`
	SentAt        *time.Time     `bson:"sent_at,omitempty"`
	FailureReason string         `bson:"failure_reason,omitempty"`
	CreatedAt     time.Time      `bson:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at"`
}

func toScheduleDoc(s ScheduledNotification) scheduleDoc {
	return scheduleDoc{
		ID:         s.ID,
		UserID:     s.UserID,
		TemplateID: s.TemplateID,
		Title:      s.Notification.Title,
		Body:       s.Notification.Body,
		Category:   string(s.Notification.Category),
		Priority:   int(s.Notification.Priority),
		Data:       s.Notification.Data,
		SendAt:     s.SendAt,
		Recur: recurrenceDoc{
			Frequency:  string(s.Recurrence.Frequency),
			Interval:   s.Recurrence.Interval,
			DaysOfWeek: s.Recurrence.DaysOfWeek,
			DayOfMonth: s.Recurrence.DayOfMonth,
			EndDate:    s.Recurrence.EndDate,
		},
		Status:        string(s.Status),
		SentAt:        s.SentAt,
		FailureReason: s.FailureReason,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (d scheduleDoc) toSchedule() ScheduledNotification {
	return ScheduledNotification{
		ID:         d.ID,
		UserID:     d.UserID,
		TemplateID: d.TemplateID,
		Notification: notification.Notification{
			ID:       d.ID,
			UserID:   d.UserID,
			Title:    d.Title,
			Body:     d.Body,
			Category: notification.Category(d.Category),
			Priority: notification.Priority(d.Priority),
			Data:     d.Data,
		},
		SendAt: d.SendAt,
		Recurrence: Recurrence{
			Frequency:  Frequency(d.Recur.Frequency),
			Interval:   d.Recur.Interval,
			DaysOfWeek: d.Recur.DaysOfWeek,
			DayOfMonth: d.Recur.DayOfMonth,
			EndDate:    d.Recur.EndDate,
		},
		Status:        Status(d.Status),
		SentAt:        d.SentAt,
		FailureReason: d.FailureReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoStorage is a MongoDB-backed implementation of the Storage interface.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates a schedule storage backed by the given
// database and ensures the due-scan and user indexes exist.
func NewMongoStorage(ctx context.Context, db *mongo.Database) (*MongoStorage, error) {
	coll := db.Collection(schedulesCollection)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "send_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule indexes: %w", err)
	}

	return &MongoStorage{coll: coll}, nil
}

func (s *MongoStorage) Put(ctx context.Context, sched ScheduledNotification) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": sched.ID},
		toScheduleDoc(sched),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store schedule: %w", err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, id string) (*ScheduledNotification, error) {
	var doc scheduleDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}

	sched := doc.toSchedule()
	return &sched, nil
}

func (s *MongoStorage) ListByUser(ctx context.Context, userID string) ([]ScheduledNotification, error) {
	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "send_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer cur.Close(ctx)

	var docs []scheduleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}

	out := make([]ScheduledNotification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSchedule())
	}
	return out, nil
}

func (s *MongoStorage) DuePending(ctx context.Context, now time.Time, limit int) ([]ScheduledNotification, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "send_at", Value: 1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.M{
		"status":  string(StatusPending),
		"send_at": bson.M{"$lte": now},
	}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan due schedules: %w", err)
	}
	defer cur.Close(ctx)

	var docs []scheduleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode due schedules: %w", err)
	}

	out := make([]ScheduledNotification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSchedule())
	}
	return out, nil
}

func (s *MongoStorage) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	set := bson.M{"status": string(status), "updated_at": at}
	if status == StatusSent {
		set["sent_at"] = at
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update schedule status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStorage) MarkFailed(ctx context.Context, id string, reason string, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":         string(StatusFailed),
			"failure_reason": reason,
			"updated_at":     at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark schedule failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
