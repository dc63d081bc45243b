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

const subscriptionCollectionName = "subscriptions"

// mongoSubscriptionRepository implements repository.SubscriptionRepository
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new Subscription repository
// backed by MongoDB.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
	}
}

// Create inserts a new subscription.
func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	if sub.UserID == primitive.NilObjectID || sub.Plan == "" {
		return primitive.NilObjectID, errors.New("subscription requires userId and plan")
	}

	sub.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = domain.SubscriptionActive
	}

	result, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted subscription ID")
	}
	return insertedID, nil
}

// GetByID retrieves a subscription by its ID.
func (r *mongoSubscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// GetByUserID retrieves all subscriptions for a user, newest first.
func (r *mongoSubscriptionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// List retrieves every subscription, newest first.
func (r *mongoSubscriptionRepository) List(ctx context.Context) ([]domain.Subscription, error) {
	return r.find(ctx, bson.M{})
}

// UpdateStatus transitions the subscription lifecycle status.
func (r *mongoSubscriptionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SubscriptionStatus) error {
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

func (r *mongoSubscriptionRepository) find(ctx context.Context, filter bson.M) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// EnsureSubscriptionIndexes creates necessary indexes for the subscriptions
// collection.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
