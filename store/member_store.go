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

// RoleGate resolves whether a user holds one of the allowed roles for an
// event. A nil member with a nil error means "not permitted"; callers
// must respond 403 and not touch any store.
type RoleGate interface {
	CheckRole(ctx context.Context, userID, eventID primitive.ObjectID, allowedRoles ...string) (*models.EventMember, error)
}

type MemberStore interface {
	RoleGate
	Add(ctx context.Context, member *models.EventMember) error
	FindByUser(ctx context.Context, eventID, userID primitive.ObjectID) (*models.EventMember, error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventMember, error)
	UpdateRole(ctx context.Context, eventID, memberID primitive.ObjectID, role string) (*models.EventMember, error)
	SetRoleByUser(ctx context.Context, eventID, userID primitive.ObjectID, role string, departmentID primitive.ObjectID) error
	ListEventIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type mongoMemberStore struct {
	coll *mongo.Collection
}

func NewMemberStore(coll *mongo.Collection) MemberStore {
	return &mongoMemberStore{coll: coll}
}

func (s *mongoMemberStore) CheckRole(ctx context.Context, userID, eventID primitive.ObjectID, allowedRoles ...string) (*models.EventMember, error) {
	var member models.EventMember
	err := s.coll.FindOne(ctx, bson.M{"eventId": eventID, "userId": userID}).Decode(&member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	for _, role := range allowedRoles {
		if member.Role == role {
			return &member, nil
		}
	}
	return nil, nil
}

func (s *mongoMemberStore) Add(ctx context.Context, member *models.EventMember) error {
	if member.ID.IsZero() {
		member.ID = primitive.NewObjectID()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, member)
	return err
}

func (s *mongoMemberStore) FindByUser(ctx context.Context, eventID, userID primitive.ObjectID) (*models.EventMember, error) {
	var member models.EventMember
	err := s.coll.FindOne(ctx, bson.M{"eventId": eventID, "userId": userID}).Decode(&member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s *mongoMemberStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.EventMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.EventMember{}
	}
	return members, nil
}

func (s *mongoMemberStore) UpdateRole(ctx context.Context, eventID, memberID primitive.ObjectID, role string) (*models.EventMember, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var member models.EventMember
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": memberID, "eventId": eventID},
		bson.M{"$set": bson.M{"role": role}},
		opts,
	).Decode(&member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s *mongoMemberStore) ListEventIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []models.EventMember
	if err = cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.EventID)
	}
	return ids, nil
}

func (s *mongoMemberStore) SetRoleByUser(ctx context.Context, eventID, userID primitive.ObjectID, role string, departmentID primitive.ObjectID) error {
	update := bson.M{"role": role}
	if !departmentID.IsZero() {
		update["departmentId"] = departmentID
	}
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"eventId": eventID, "userId": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
