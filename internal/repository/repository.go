package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddAthleteToCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) error
	GetAthletesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForAthlete(ctx context.Context, athleteID, coachID primitive.ObjectID) error
	SetGroupForAthlete(ctx context.Context, athleteID primitive.ObjectID, groupID *primitive.ObjectID) error
}

// GroupRepository defines the interface for interacting with athlete groups.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Group, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Group, error)
	AddAthlete(ctx context.Context, groupID, athleteID primitive.ObjectID) error
	RemoveAthlete(ctx context.Context, groupID, athleteID primitive.ObjectID) error
	Delete(ctx context.Context, groupID, coachID primitive.ObjectID) error
}

// ProgramRepository defines the interface for interacting with program
// templates.
type ProgramRepository interface {
	Create(ctx context.Context, template *domain.ProgramTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramTemplate, error)
	Update(ctx context.Context, template *domain.ProgramTemplate) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error // Ensure coach owns the template
}

// AssignmentRepository defines the interface for interacting with program
// assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramAssignment, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ProgramAssignment, error)
	GetByGroupIDs(ctx context.Context, groupIDs []primitive.ObjectID) ([]domain.ProgramAssignment, error)
	CountByTemplateID(ctx context.Context, templateID primitive.ObjectID) (int64, error)
	ListActive(ctx context.Context) ([]domain.ProgramAssignment, error)
	// ReplaceTrainingDates swaps the whole date list in one document write so
	// an edit can never leave a partially updated schedule behind.
	ReplaceTrainingDates(ctx context.Context, id primitive.ObjectID, dates []string) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error
}

// CompletionRepository defines the interface for interacting with workout
// completion records.
type CompletionRepository interface {
	Create(ctx context.Context, completion *domain.WorkoutCompletion) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCompletion, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error)
	GetByAssignmentAndDate(ctx context.Context, assignmentID primitive.ObjectID, date string) (*domain.WorkoutCompletion, error)
	// OverrideStatus is the admin-only escape hatch; completions are
	// otherwise immutable after creation.
	OverrideStatus(ctx context.Context, id primitive.ObjectID, status domain.CompletionStatus) error
}

// SubscriptionRepository defines the interface for interacting with
// membership subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error)
	List(ctx context.Context) ([]domain.Subscription, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SubscriptionStatus) error
}

// TestResultRepository defines the interface for interacting with strength
// test results.
type TestResultRepository interface {
	Create(ctx context.Context, result *domain.TestResult) (primitive.ObjectID, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TestResult, error)
}
