package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionStatus records how a scheduled session ended.
type CompletionStatus string

const (
	CompletionDone   CompletionStatus = "completed"
	CompletionMissed CompletionStatus = "missed"
)

// WorkoutCompletion is one row per (assignment, scheduled date) actually
// attempted: created when an athlete finishes a session or explicitly skips
// it. Immutable after creation except by admin override. A completion whose
// date is later removed from the schedule by a reassignment stays in the
// collection as a historical record.
type WorkoutCompletion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID  primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	AthleteID     primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	ScheduledDate string             `bson:"scheduledDate" json:"scheduledDate"` // yyyy-MM-dd
	Status        CompletionStatus   `bson:"status" json:"status"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
