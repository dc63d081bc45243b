package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentPaused    AssignmentStatus = "paused"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// AssignmentType distinguishes individual from group assignments.
type AssignmentType string

const (
	AssignmentIndividual AssignmentType = "individual"
	AssignmentGroup      AssignmentType = "group"
)

// ProgramAssignment binds a ProgramTemplate to one athlete or one athlete
// group, together with the concrete calendar dates the program runs on.
// Exactly one of AthleteID/GroupID is set, matching Type.
type ProgramAssignment struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TemplateID primitive.ObjectID  `bson:"templateId" json:"templateId"`
	CoachID    primitive.ObjectID  `bson:"coachId" json:"coachId"` // Denormalized for easier queries/auth
	Type       AssignmentType      `bson:"assignmentType" json:"assignmentType"`
	AthleteID  *primitive.ObjectID `bson:"athleteId,omitempty" json:"athleteId,omitempty"`
	GroupID    *primitive.ObjectID `bson:"groupId,omitempty" json:"groupId,omitempty"`

	// TrainingDates holds yyyy-MM-dd calendar dates, sorted ascending, not
	// necessarily contiguous. Replaced as a whole on edit/reassignment.
	TrainingDates []string `bson:"trainingDates" json:"trainingDates"`

	Status    AssignmentStatus `bson:"status" json:"status"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt"`
}
