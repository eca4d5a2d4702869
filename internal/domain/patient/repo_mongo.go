package patient

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores patients in a single MongoDB collection keyed by
// the numeric patientid field.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// noID strips the Mongo object id so documents decode cleanly into Patient.
var noID = options.FindOne().SetProjection(bson.M{"_id": 0})

func (r *MongoRepository) FindByID(ctx context.Context, patientID int) (*Patient, error) {
	var p Patient
	err := r.coll.FindOne(ctx, bson.M{"patientid": patientID}, noID).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]Patient, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var patients []Patient
	if err := cur.All(ctx, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *MongoRepository) UpdateFields(ctx context.Context, patientID int, fields bson.M) (int64, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"patientid": patientID}, bson.M{"$set": fields})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
