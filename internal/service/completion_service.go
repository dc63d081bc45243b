package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/metrics"
	"hyperkids/gym-app/internal/program"
	"hyperkids/gym-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrCompletionNotFound   = errors.New("completion record not found")
	ErrCompletionExists     = errors.New("this training date already has a completion record")
	ErrDateNotScheduled     = errors.New("date is not on the assignment's schedule")
	ErrNotAssignedToAthlete = errors.New("assignment does not belong to this athlete")
	ErrDateInFuture         = errors.New("cannot record a result for a future date")
)

// CompletionService records session outcomes. A record is one row per
// (assignment, date), terminal once written; only an admin override can
// change it afterwards.
type CompletionService interface {
	// RecordCompletion stores the athlete's outcome (completed or explicitly
	// missed) for one scheduled date.
	RecordCompletion(ctx context.Context, athlete *domain.User, assignmentID primitive.ObjectID, date string, status domain.CompletionStatus, notes string) (*domain.WorkoutCompletion, error)
	GetCompletions(ctx context.Context, requester *domain.User, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error)
	// OverrideCompletion is the admin escape hatch for correcting a wrongly
	// recorded outcome.
	OverrideCompletion(ctx context.Context, completionID primitive.ObjectID, status domain.CompletionStatus) (*domain.WorkoutCompletion, error)
}

type completionService struct {
	assignmentRepo repository.AssignmentRepository
	completionRepo repository.CompletionRepository
	loc            *time.Location
}

// NewCompletionService creates a new instance of completionService.
func NewCompletionService(
	assignmentRepo repository.AssignmentRepository,
	completionRepo repository.CompletionRepository,
	loc *time.Location,
) CompletionService {
	return &completionService{
		assignmentRepo: assignmentRepo,
		completionRepo: completionRepo,
		loc:            loc,
	}
}

// RecordCompletion validates the athlete/date against the assignment and
// writes the outcome.
func (s *completionService) RecordCompletion(ctx context.Context, athlete *domain.User, assignmentID primitive.ObjectID, date string, status domain.CompletionStatus, notes string) (*domain.WorkoutCompletion, error) {
	if athlete == nil || assignmentID == primitive.NilObjectID {
		return nil, errors.New("athlete and assignment ID are required")
	}
	if status != domain.CompletionDone && status != domain.CompletionMissed {
		return nil, errors.New("completion status must be completed or missed")
	}

	d, err := program.ParseDate(date)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.Status != domain.AssignmentActive {
		return nil, ErrAssignmentNotActive
	}
	if !assignedTo(athlete, assignment) {
		return nil, ErrNotAssignedToAthlete
	}
	if !contains(assignment.TrainingDates, string(d)) {
		return nil, ErrDateNotScheduled
	}
	if program.Today(s.loc).Before(d) {
		return nil, ErrDateInFuture
	}

	if _, err := s.completionRepo.GetByAssignmentAndDate(ctx, assignmentID, string(d)); err == nil {
		return nil, ErrCompletionExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	completion := &domain.WorkoutCompletion{
		AssignmentID:  assignmentID,
		AthleteID:     athlete.ID,
		ScheduledDate: string(d),
		Status:        status,
		Notes:         notes,
	}
	completionID, err := s.completionRepo.Create(ctx, completion)
	if err != nil {
		// The unique (assignment, date) index makes double-recording a clean
		// conflict rather than a duplicate row.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCompletionExists
		}
		return nil, err
	}
	completion.ID = completionID

	metrics.CompletionsRecordedTotal.WithLabelValues(string(status)).Inc()
	return completion, nil
}

// GetCompletions lists the completion history of an assignment the requester
// may view.
func (s *completionService) GetCompletions(ctx context.Context, requester *domain.User, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !canViewAssignment(requester, assignment) {
		return nil, ErrAssignmentAccessDenied
	}
	return s.completionRepo.GetByAssignmentID(ctx, assignmentID)
}

// OverrideCompletion rewrites a completion's status.
func (s *completionService) OverrideCompletion(ctx context.Context, completionID primitive.ObjectID, status domain.CompletionStatus) (*domain.WorkoutCompletion, error) {
	if status != domain.CompletionDone && status != domain.CompletionMissed {
		return nil, errors.New("completion status must be completed or missed")
	}
	completion, err := s.completionRepo.GetByID(ctx, completionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompletionNotFound
		}
		return nil, err
	}

	if err := s.completionRepo.OverrideStatus(ctx, completionID, status); err != nil {
		return nil, err
	}
	completion.Status = status
	return completion, nil
}

// assignedTo: the athlete is the direct target or a member of the target
// group.
func assignedTo(athlete *domain.User, a *domain.ProgramAssignment) bool {
	if a.AthleteID != nil && *a.AthleteID == athlete.ID {
		return true
	}
	if a.GroupID != nil && athlete.GroupID != nil && *a.GroupID == *athlete.GroupID {
		return true
	}
	return false
}

func contains(dates []string, d string) bool {
	for _, x := range dates {
		if x == d {
			return true
		}
	}
	return false
}
