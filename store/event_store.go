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

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoEventStore struct {
	coll *mongo.Collection
}

func NewEventStore(coll *mongo.Collection) EventStore {
	return &mongoEventStore{coll: coll}
}

func (s *mongoEventStore) Create(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = now
	event.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, event)
	return err
}

func (s *mongoEventStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *mongoEventStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

func (s *mongoEventStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Event, error) {
	fields["updatedAt"] = time.Now().UTC()

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var event models.Event
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *mongoEventStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
