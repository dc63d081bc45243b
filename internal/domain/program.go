package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateExercise is one prescribed exercise inside a block: the workout
// content an athlete actually performs (sets, reps, tempo, rest).
type TemplateExercise struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Sets     int                `bson:"sets" json:"sets"`
	Reps     string             `bson:"reps" json:"reps"`   // e.g. "8-10", "5", "AMRAP"
	Tempo    string             `bson:"tempo,omitempty" json:"tempo,omitempty"` // e.g. "3-1-1"
	Rest     string             `bson:"rest,omitempty" json:"rest,omitempty"`   // e.g. "90s"
	Sequence int                `bson:"sequence" json:"sequence"`

	// Optional prescription as a percentage of the athlete's estimated 1RM.
	IntensityPercent *float64 `bson:"intensityPercent,omitempty" json:"intensityPercent,omitempty"`

	// Optional demo video stored in object storage; resolved to a presigned
	// URL when templates are served.
	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"videoObjectKey,omitempty"`
}

// TemplateBlock groups exercises within a day, e.g. "Warmup", "Main lift".
type TemplateBlock struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Sequence  int                `bson:"sequence" json:"sequence"`
	Exercises []TemplateExercise `bson:"exercises" json:"exercises"`
}

// TemplateDay is one training day within a week. DayNumber is unique within
// the owning week and indexes into workout content, not calendar position.
type TemplateDay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayNumber int                `bson:"dayNumber" json:"dayNumber"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Blocks    []TemplateBlock    `bson:"blocks" json:"blocks"`
}

// TemplateWeek is one week of a program template. WeekNumber is unique and
// ordered within the template.
type TemplateWeek struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	Days       []TemplateDay      `bson:"days" json:"days"`
}

// ProgramTemplate is the reusable week/day/block/exercise structure defining
// a workout program's content. Stored as a single document; weeks are
// embedded because they are only ever read and written as a unit.
type ProgramTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Weeks       []TemplateWeek     `bson:"weeks" json:"weeks"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TotalDays returns the number of training days in one full cycle of the
// template.
func (t *ProgramTemplate) TotalDays() int {
	total := 0
	for _, w := range t.Weeks {
		total += len(w.Days)
	}
	return total
}
