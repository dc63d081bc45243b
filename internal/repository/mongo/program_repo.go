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

const programCollectionName = "program_templates"

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new ProgramTemplate repository backed
// by MongoDB.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program template. Generated ObjectIDs are assigned to
// every nested week/day/block/exercise that lacks one so display provenance
// can always reference a stable id.
func (r *mongoProgramRepository) Create(ctx context.Context, template *domain.ProgramTemplate) (primitive.ObjectID, error) {
	if template.CoachID == primitive.NilObjectID || template.Name == "" {
		return primitive.NilObjectID, errors.New("template requires coachId and name")
	}

	template.ID = primitive.NewObjectID()
	assignNestedIDs(template)
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a program template by its ID.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	var template domain.ProgramTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetByCoachID retrieves all templates authored by a coach.
func (r *mongoProgramRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	var templates []domain.ProgramTemplate
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update replaces the template's mutable fields. Ownership and CreatedAt are
// never touched.
func (r *mongoProgramRepository) Update(ctx context.Context, template *domain.ProgramTemplate) error {
	if template.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}
	assignNestedIDs(template)

	update := bson.M{
		"$set": bson.M{
			"name":        template.Name,
			"description": template.Description,
			"weeks":       template.Weeks,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": template.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a template owned by the given coach.
func (r *mongoProgramRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "coachId": coachID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func assignNestedIDs(template *domain.ProgramTemplate) {
	for wi := range template.Weeks {
		w := &template.Weeks[wi]
		if w.ID == primitive.NilObjectID {
			w.ID = primitive.NewObjectID()
		}
		for di := range w.Days {
			d := &w.Days[di]
			if d.ID == primitive.NilObjectID {
				d.ID = primitive.NewObjectID()
			}
			for bi := range d.Blocks {
				b := &d.Blocks[bi]
				if b.ID == primitive.NilObjectID {
					b.ID = primitive.NewObjectID()
				}
				for ei := range b.Exercises {
					e := &b.Exercises[ei]
					if e.ID == primitive.NilObjectID {
						e.ID = primitive.NewObjectID()
					}
				}
			}
		}
	}
}

// EnsureProgramIndexes creates necessary indexes for the program templates
// collection.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
