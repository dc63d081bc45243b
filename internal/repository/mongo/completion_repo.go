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

const completionCollectionName = "workout_completions"

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new WorkoutCompletion repository
// backed by MongoDB.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Create inserts a completion record. The unique (assignmentId,
// scheduledDate) index rejects duplicates.
func (r *mongoCompletionRepository) Create(ctx context.Context, completion *domain.WorkoutCompletion) (primitive.ObjectID, error) {
	if completion.AssignmentID == primitive.NilObjectID ||
		completion.AthleteID == primitive.NilObjectID ||
		completion.ScheduledDate == "" {
		return primitive.NilObjectID, errors.New("completion requires assignmentId, athleteId and scheduledDate")
	}

	completion.ID = primitive.NewObjectID()
	completion.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, completion)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted completion ID")
	}
	return insertedID, nil
}

// GetByID retrieves a completion by its ID.
func (r *mongoCompletionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	var completion domain.WorkoutCompletion
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&completion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}

// GetByAssignmentID retrieves all completions for an assignment, sorted by
// scheduled date. Orphaned records (dates no longer scheduled) are included;
// the resolver decides what surfaces.
func (r *mongoCompletionRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	var completions []domain.WorkoutCompletion
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"assignmentId": assignmentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return completions, nil
}

// GetByAssignmentAndDate retrieves the completion for one scheduled
// occurrence, if any.
func (r *mongoCompletionRepository) GetByAssignmentAndDate(ctx context.Context, assignmentID primitive.ObjectID, date string) (*domain.WorkoutCompletion, error) {
	var completion domain.WorkoutCompletion
	filter := bson.M{"assignmentId": assignmentID, "scheduledDate": date}
	err := r.collection.FindOne(ctx, filter).Decode(&completion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}

// OverrideStatus rewrites a completion's status. Admin-only; completions are
// otherwise immutable after creation.
func (r *mongoCompletionRepository) OverrideStatus(ctx context.Context, id primitive.ObjectID, status domain.CompletionStatus) error {
	update := bson.M{"$set": bson.M{"status": status}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCompletionIndexes creates necessary indexes for the completions
// collection.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One completion per scheduled occurrence.
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
