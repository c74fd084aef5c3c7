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

type DepartmentStore interface {
	Create(ctx context.Context, dept *models.Department) error
	GetByID(ctx context.Context, eventID, id primitive.ObjectID) (*models.Department, error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Department, error)
	Update(ctx context.Context, eventID, id primitive.ObjectID, fields bson.M) (*models.Department, error)
	Delete(ctx context.Context, eventID, id primitive.ObjectID) error
}

type mongoDepartmentStore struct {
	coll *mongo.Collection
}

func NewDepartmentStore(coll *mongo.Collection) DepartmentStore {
	return &mongoDepartmentStore{coll: coll}
}

func (s *mongoDepartmentStore) Create(ctx context.Context, dept *models.Department) error {
	now := time.Now().UTC()
	if dept.ID.IsZero() {
		dept.ID = primitive.NewObjectID()
	}
	dept.CreatedAt = now
	dept.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, dept)
	return err
}

func (s *mongoDepartmentStore) GetByID(ctx context.Context, eventID, id primitive.ObjectID) (*models.Department, error) {
	var dept models.Department
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "eventId": eventID}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (s *mongoDepartmentStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var depts []models.Department
	if err = cursor.All(ctx, &depts); err != nil {
		return nil, err
	}
	if depts == nil {
		depts = []models.Department{}
	}
	return depts, nil
}

func (s *mongoDepartmentStore) Update(ctx context.Context, eventID, id primitive.ObjectID, fields bson.M) (*models.Department, error) {
	fields["updatedAt"] = time.Now().UTC()

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var dept models.Department
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "eventId": eventID}, bson.M{"$set": fields}, opts).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (s *mongoDepartmentStore) Delete(ctx context.Context, eventID, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "eventId": eventID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
