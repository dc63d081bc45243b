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

const userCollectionName = "users"

// mongoUserRepository implements repository.UserRepository
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new User repository backed by MongoDB.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user requires email and role")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted user ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves a user by their unique email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddAthleteToCoach appends an athlete ID to the coach's roster.
func (r *mongoUserRepository) AddAthleteToCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) error {
	filter := bson.M{"_id": coachID, "role": domain.RoleCoach}
	update := bson.M{
		"$addToSet": bson.M{"athleteIds": athleteID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetAthletesByCoachID retrieves all athlete users managed by a coach.
func (r *mongoUserRepository) GetAthletesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var athletes []domain.User
	filter := bson.M{"coachId": coachID, "role": domain.RoleAthlete}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &athletes); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return athletes, nil
}

// SetCoachForAthlete sets the managing coach on the athlete's record.
func (r *mongoUserRepository) SetCoachForAthlete(ctx context.Context, athleteID, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": athleteID, "role": domain.RoleAthlete}
	update := bson.M{
		"$set": bson.M{
			"coachId":   coachID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetGroupForAthlete sets or clears (nil groupID) the athlete's group.
func (r *mongoUserRepository) SetGroupForAthlete(ctx context.Context, athleteID primitive.ObjectID, groupID *primitive.ObjectID) error {
	filter := bson.M{"_id": athleteID, "role": domain.RoleAthlete}

	var update bson.M
	if groupID == nil {
		update = bson.M{
			"$unset": bson.M{"groupId": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				"groupId":   *groupID,
				"updatedAt": time.Now().UTC(),
			},
		}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
