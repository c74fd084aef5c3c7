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

// CategoryCount is one bucket of the category statistics aggregation.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

type RiskStore interface {
	Create(ctx context.Context, risk *models.Risk) error
	GetByID(ctx context.Context, eventID, riskID primitive.ObjectID) (*models.Risk, error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Risk, error)
	ListPage(ctx context.Context, eventID primitive.ObjectID, page, limit int64) ([]models.Risk, int64, error)
	ListByDepartment(ctx context.Context, eventID, departmentID primitive.ObjectID) ([]models.Risk, error)
	Update(ctx context.Context, eventID, riskID primitive.ObjectID, fields bson.M) (*models.Risk, error)
	Delete(ctx context.Context, eventID, riskID primitive.ObjectID) error
	AddOccurrence(ctx context.Context, eventID, riskID primitive.ObjectID, occ models.Occurrence, updatedBy primitive.ObjectID) (*models.Risk, error)
	UpdateOccurrence(ctx context.Context, eventID, riskID, occurredRiskID primitive.ObjectID, note *string, updatedBy primitive.ObjectID) (*models.Risk, error)
	RemoveOccurrence(ctx context.Context, eventID, riskID, occurredRiskID primitive.ObjectID, updatedBy primitive.ObjectID) (*models.Risk, error)
	CategoryStats(ctx context.Context, eventID primitive.ObjectID) ([]CategoryCount, error)
}

type mongoRiskStore struct {
	coll *mongo.Collection
}

func NewRiskStore(coll *mongo.Collection) RiskStore {
	return &mongoRiskStore{coll: coll}
}

func (s *mongoRiskStore) Create(ctx context.Context, risk *models.Risk) error {
	now := time.Now().UTC()
	if risk.ID.IsZero() {
		risk.ID = primitive.NewObjectID()
	}
	if risk.OccurredRisks == nil {
		risk.OccurredRisks = []models.Occurrence{}
	}
	risk.RiskStatus = models.DeriveRiskStatus(risk.OccurredRisks)
	risk.CreatedAt = now
	risk.UpdatedAt = now

	_, err := s.coll.InsertOne(ctx, risk)
	return err
}

func (s *mongoRiskStore) GetByID(ctx context.Context, eventID, riskID primitive.ObjectID) (*models.Risk, error) {
	var risk models.Risk
	err := s.coll.FindOne(ctx, bson.M{"_id": riskID, "eventId": eventID}).Decode(&risk)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

func (s *mongoRiskStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Risk, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var risks []models.Risk
	if err = cursor.All(ctx, &risks); err != nil {
		return nil, err
	}
	if risks == nil {
		risks = []models.Risk{}
	}
	return risks, nil
}

func (s *mongoRiskStore) ListPage(ctx context.Context, eventID primitive.ObjectID, page, limit int64) ([]models.Risk, int64, error) {
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

	var risks []models.Risk
	if err = cursor.All(ctx, &risks); err != nil {
		return nil, 0, err
	}
	if risks == nil {
		risks = []models.Risk{}
	}
	return risks, total, nil
}

func (s *mongoRiskStore) ListByDepartment(ctx context.Context, eventID, departmentID primitive.ObjectID) ([]models.Risk, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"eventId": eventID, "departmentId": departmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var risks []models.Risk
	if err = cursor.All(ctx, &risks); err != nil {
		return nil, err
	}
	if risks == nil {
		risks = []models.Risk{}
	}
	return risks, nil
}

func (s *mongoRiskStore) Update(ctx context.Context, eventID, riskID primitive.ObjectID, fields bson.M) (*models.Risk, error) {
	fields["updatedAt"] = time.Now().UTC()

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var risk models.Risk
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": riskID, "eventId": eventID},
		bson.M{"$set": fields},
		opts,
	).Decode(&risk)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

func (s *mongoRiskStore) Delete(ctx context.Context, eventID, riskID primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": riskID, "eventId": eventID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddOccurrence appends an occurrence and recomputes the parent status
// in one update, so concurrent appends never lose writes. An appended
// occurrence always leaves the list non-empty, hence status "occurred".
func (s *mongoRiskStore) AddOccurrence(ctx context.Context, eventID, riskID primitive.ObjectID, occ models.Occurrence, updatedBy primitive.ObjectID) (*models.Risk, error) {
	now := time.Now().UTC()
	if occ.ID.IsZero() {
		occ.ID = primitive.NewObjectID()
	}
	if occ.Timestamp.IsZero() {
		occ.Timestamp = now
	}

	occDoc := bson.M{
		"_id":            occ.ID,
		"note":           occ.Note,
		"updatePersonId": occ.UpdatePersonID,
		"timestamp":      occ.Timestamp,
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"occurredRisks": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$occurredRisks", bson.A{}}},
				bson.A{occDoc},
			}},
			"riskStatus":      models.RiskStatusOccurred,
			"updatedPersonId": updatedBy,
			"updatedAt":       now,
		}}},
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var risk models.Risk
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": riskID, "eventId": eventID}, pipeline, opts).Decode(&risk)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

func (s *mongoRiskStore) UpdateOccurrence(ctx context.Context, eventID, riskID, occurredRiskID primitive.ObjectID, note *string, updatedBy primitive.ObjectID) (*models.Risk, error) {
	now := time.Now().UTC()

	set := bson.M{
		"occurredRisks.$.updatePersonId": updatedBy,
		"occurredRisks.$.timestamp":      now,
		"updatedPersonId":                updatedBy,
		"updatedAt":                      now,
	}
	if note != nil {
		set["occurredRisks.$.note"] = *note
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	// Matching on the embedded _id makes a missing sub-record surface as
	// ErrNoDocuments, same as a missing risk.
	var risk models.Risk
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": riskID, "eventId": eventID, "occurredRisks._id": occurredRiskID},
		bson.M{"$set": set},
		opts,
	).Decode(&risk)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

// RemoveOccurrence filters the occurrence out and re-derives the status
// from the remaining list, atomically.
func (s *mongoRiskStore) RemoveOccurrence(ctx context.Context, eventID, riskID, occurredRiskID primitive.ObjectID, updatedBy primitive.ObjectID) (*models.Risk, error) {
	now := time.Now().UTC()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"occurredRisks": bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$occurredRisks", bson.A{}}},
				"as":    "occ",
				"cond":  bson.M{"$ne": bson.A{"$$occ._id", occurredRiskID}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"riskStatus": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{bson.M{"$size": "$occurredRisks"}, 0}},
				models.RiskStatusOccurred,
				models.RiskStatusNotYet,
			}},
			"updatedPersonId": updatedBy,
			"updatedAt":       now,
		}}},
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var risk models.Risk
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": riskID, "eventId": eventID, "occurredRisks._id": occurredRiskID},
		pipeline,
		opts,
	).Decode(&risk)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

func (s *mongoRiskStore) CategoryStats(ctx context.Context, eventID primitive.ObjectID) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"eventId": eventID}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []CategoryCount
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []CategoryCount{}
	}
	return stats, nil
}
