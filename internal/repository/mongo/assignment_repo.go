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

const assignmentCollectionName = "program_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by
// MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new program assignment.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error) {
	if assignment.TemplateID == primitive.NilObjectID || assignment.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires templateId and coachId")
	}
	switch assignment.Type {
	case domain.AssignmentIndividual:
		if assignment.AthleteID == nil || *assignment.AthleteID == primitive.NilObjectID {
			return primitive.NilObjectID, errors.New("individual assignment requires athleteId")
		}
	case domain.AssignmentGroup:
		if assignment.GroupID == nil || *assignment.GroupID == primitive.NilObjectID {
			return primitive.NilObjectID, errors.New("group assignment requires groupId")
		}
	default:
		return primitive.NilObjectID, errors.New("assignment requires a valid assignmentType")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.AssignmentActive
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	var assignment domain.ProgramAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByCoachID retrieves all assignments created by a coach.
func (r *mongoAssignmentRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

// GetByAthleteID retrieves all individual assignments targeting an athlete.
func (r *mongoAssignmentRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	return r.find(ctx, bson.M{"athleteId": athleteID})
}

// GetByGroupIDs retrieves all group assignments targeting any of the groups.
func (r *mongoAssignmentRepository) GetByGroupIDs(ctx context.Context, groupIDs []primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"groupId": bson.M{"$in": groupIDs}})
}

// CountByTemplateID counts assignments referencing a template. Used to
// enforce template immutability once referenced.
func (r *mongoAssignmentRepository) CountByTemplateID(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"templateId": templateID})
}

// ListActive retrieves every active assignment. Used by the daily sweep.
func (r *mongoAssignmentRepository) ListActive(ctx context.Context) ([]domain.ProgramAssignment, error) {
	return r.find(ctx, bson.M{"status": domain.AssignmentActive})
}

// ReplaceTrainingDates swaps the assignment's whole training date list in a
// single document update, so a failed write leaves the previous schedule
// intact and a successful one can never be partial.
func (r *mongoAssignmentRepository) ReplaceTrainingDates(ctx context.Context, id primitive.ObjectID, dates []string) error {
	update := bson.M{
		"$set": bson.M{
			"trainingDates": dates,
			"updatedAt":     time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStatus transitions the assignment lifecycle status.
func (r *mongoAssignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M) ([]domain.ProgramAssignment, error) {
	var assignments []domain.ProgramAssignment
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments
// collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
