package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a coach-owned set of athletes that can be the target of a
// group program assignment.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID   `bson:"coachId" json:"coachId"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	AthleteIDs  []primitive.ObjectID `bson:"athleteIds,omitempty" json:"athleteIds,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
