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

const groupCollectionName = "groups"

// mongoGroupRepository implements repository.GroupRepository
type mongoGroupRepository struct {
	collection *mongo.Collection
}

// NewMongoGroupRepository creates a new Group repository backed by MongoDB.
func NewMongoGroupRepository(db *mongo.Database) repository.GroupRepository {
	return &mongoGroupRepository{
		collection: db.Collection(groupCollectionName),
	}
}

// Create inserts a new group.
func (r *mongoGroupRepository) Create(ctx context.Context, group *domain.Group) (primitive.ObjectID, error) {
	if group.CoachID == primitive.NilObjectID || group.Name == "" {
		return primitive.NilObjectID, errors.New("group requires coachId and name")
	}

	group.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted group ID")
	}
	return insertedID, nil
}

// GetByID retrieves a group by its ID.
func (r *mongoGroupRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Group, error) {
	var group domain.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// GetByCoachID retrieves all groups owned by a coach.
func (r *mongoGroupRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Group, error) {
	var groups []domain.Group
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// AddAthlete adds an athlete to the group's member list.
func (r *mongoGroupRepository) AddAthlete(ctx context.Context, groupID, athleteID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"athleteIds": athleteID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveAthlete removes an athlete from the group's member list.
func (r *mongoGroupRepository) RemoveAthlete(ctx context.Context, groupID, athleteID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"athleteIds": athleteID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a group owned by the given coach.
func (r *mongoGroupRepository) Delete(ctx context.Context, groupID, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": groupID, "coachId": coachID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureGroupIndexes creates necessary indexes for the groups collection.
func EnsureGroupIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteIds", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
