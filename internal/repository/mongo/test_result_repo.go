package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
)

const testResultCollectionName = "test_results"

// mongoTestResultRepository implements repository.TestResultRepository
type mongoTestResultRepository struct {
	collection *mongo.Collection
}

// NewMongoTestResultRepository creates a new TestResult repository backed by
// MongoDB.
func NewMongoTestResultRepository(db *mongo.Database) repository.TestResultRepository {
	return &mongoTestResultRepository{
		collection: db.Collection(testResultCollectionName),
	}
}

// Create inserts a strength test result.
func (r *mongoTestResultRepository) Create(ctx context.Context, result *domain.TestResult) (primitive.ObjectID, error) {
	if result.AthleteID == primitive.NilObjectID || result.Exercise == "" {
		return primitive.NilObjectID, errors.New("test result requires athleteId and exercise")
	}

	result.ID = primitive.NewObjectID()
	result.CreatedAt = time.Now().UTC()
	if result.TestedAt.IsZero() {
		result.TestedAt = result.CreatedAt
	}

	inserted, err := r.collection.InsertOne(ctx, result)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := inserted.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted test result ID")
	}
	return insertedID, nil
}

// GetByAthleteID retrieves an athlete's test history, newest first.
func (r *mongoTestResultRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TestResult, error) {
	var results []domain.TestResult
	findOptions := options.Find().SetSort(bson.D{{Key: "testedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"athleteId": athleteID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureTestResultIndexes creates necessary indexes for the test results
// collection.
func EnsureTestResultIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "testedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
