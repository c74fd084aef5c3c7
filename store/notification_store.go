package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minhdangfptu/myFEvent-sub007/models"
)

// NotificationStore is the outbox: every emitted notification lands here
// before (and regardless of) websocket delivery.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByEvent(ctx context.Context, eventID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error)
}

type mongoNotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(coll *mongo.Collection) NotificationStore {
	return &mongoNotificationStore{coll: coll}
}

func (s *mongoNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, n)
	return err
}

func (s *mongoNotificationStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"eventId": eventID}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, total, nil
}
