package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestResult records one strength test: the raw lift plus the 1RM estimate
// derived from it at creation time. The estimate is stored so later formula
// changes don't silently rewrite history.
type TestResult struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID      primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	CoachID        primitive.ObjectID `bson:"coachId" json:"coachId"`
	Exercise       string             `bson:"exercise" json:"exercise"` // e.g. "Back Squat"
	WeightKg       float64            `bson:"weightKg" json:"weightKg"`
	Reps           int                `bson:"reps" json:"reps"`
	Method         string             `bson:"method" json:"method"` // estimation formula used
	EstimatedOneRM float64            `bson:"estimatedOneRm" json:"estimatedOneRm"`
	TestedAt       time.Time          `bson:"testedAt" json:"testedAt"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
