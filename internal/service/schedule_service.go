package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/metrics"
	"hyperkids/gym-app/internal/program"
	"hyperkids/gym-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAssignmentNotFound      = errors.New("program assignment not found")
	ErrAssignmentAccessDenied  = errors.New("access denied to this assignment")
	ErrAthleteNotManaged       = errors.New("athlete is not managed by this coach")
	ErrGroupNotOwned           = errors.New("group is not owned by this coach")
	ErrInvalidAssignmentTarget = errors.New("assignment needs exactly one target: an athlete or a group")
	ErrAssignmentNotActive     = errors.New("assignment is not active")
)

// ScheduleView is the full derived picture of one assignment: the expanded
// week structure sized to its schedule, plus per-date statuses. Recomputed on
// every read, never persisted.
type ScheduleView struct {
	Assignment *domain.ProgramAssignment `json:"assignment"`
	Weeks      []program.DisplayWeek     `json:"weeks"`
	Days       []program.ScheduledDay    `json:"days"`
}

// ScheduleService owns assignment scheduling: creating assignments with a
// validated date set, editing dates under the completed-date policy, and
// deriving schedule views.
type ScheduleService interface {
	AssignProgram(ctx context.Context, coachID, templateID primitive.ObjectID, athleteID, groupID *primitive.ObjectID, dates []string) (*domain.ProgramAssignment, error)
	// PreviewWeeks expands a template's week structure for a planned number
	// of training dates, for the coach's date-picking UI.
	PreviewWeeks(ctx context.Context, coachID, templateID primitive.ObjectID, trainingDatesCount int) ([]program.DisplayWeek, error)
	// EditTrainingDates replaces an assignment's date set. Removing a date
	// that already has a completed record requires isReassignment; without it
	// the edit is rejected with *program.PolicyViolationError and nothing is
	// persisted.
	EditTrainingDates(ctx context.Context, coachID, assignmentID primitive.ObjectID, proposed []string, isReassignment bool) (*domain.ProgramAssignment, error)
	GetSchedule(ctx context.Context, requester *domain.User, assignmentID primitive.ObjectID) (*ScheduleView, error)
	GetAssignmentsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramAssignment, error)
	GetAssignmentsForAthlete(ctx context.Context, athlete *domain.User) ([]domain.ProgramAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, coachID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) error
}

type scheduleService struct {
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	programRepo    repository.ProgramRepository
	assignmentRepo repository.AssignmentRepository
	completionRepo repository.CompletionRepository
	loc            *time.Location
}

// NewScheduleService creates a new instance of scheduleService. loc is the
// organization timezone; every past/future decision uses it.
func NewScheduleService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	programRepo repository.ProgramRepository,
	assignmentRepo repository.AssignmentRepository,
	completionRepo repository.CompletionRepository,
	loc *time.Location,
) ScheduleService {
	return &scheduleService{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		programRepo:    programRepo,
		assignmentRepo: assignmentRepo,
		completionRepo: completionRepo,
		loc:            loc,
	}
}

// AssignProgram creates a new assignment of a template to an athlete or a
// group, with the given calendar dates.
func (s *scheduleService) AssignProgram(ctx context.Context, coachID, templateID primitive.ObjectID, athleteID, groupID *primitive.ObjectID, dates []string) (*domain.ProgramAssignment, error) {
	if coachID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, errors.New("coach ID and template ID are required")
	}

	template, err := s.programRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}

	assignmentType, err := s.checkTarget(ctx, coachID, athleteID, groupID)
	if err != nil {
		return nil, err
	}

	normalized, err := program.ValidateTrainingDates(template.Weeks, dates, program.Today(s.loc))
	if err != nil {
		metrics.ScheduleEditsBlockedTotal.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}

	assignment := &domain.ProgramAssignment{
		TemplateID:    templateID,
		CoachID:       coachID,
		Type:          assignmentType,
		AthleteID:     athleteID,
		GroupID:       groupID,
		TrainingDates: program.Strings(normalized),
		Status:        domain.AssignmentActive,
	}
	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	metrics.AssignmentsCreatedTotal.WithLabelValues(string(assignmentType)).Inc()
	return assignment, nil
}

// PreviewWeeks expands the template for a planned schedule length.
func (s *scheduleService) PreviewWeeks(ctx context.Context, coachID, templateID primitive.ObjectID, trainingDatesCount int) ([]program.DisplayWeek, error) {
	template, err := s.programRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}
	return program.Repeat(template.Weeks, trainingDatesCount), nil
}

// EditTrainingDates replaces the assignment's whole date set after running
// the proposal through the completion-history reconciler.
func (s *scheduleService) EditTrainingDates(ctx context.Context, coachID, assignmentID primitive.ObjectID, proposed []string, isReassignment bool) (*domain.ProgramAssignment, error) {
	assignment, err := s.getOwnedAssignment(ctx, assignmentID, coachID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != domain.AssignmentActive {
		return nil, ErrAssignmentNotActive
	}

	proposedDates, err := program.ParseDates(proposed)
	if err != nil {
		metrics.ScheduleEditsBlockedTotal.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}
	if len(proposedDates) == 0 {
		metrics.ScheduleEditsBlockedTotal.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, program.ErrNoTrainingDates
	}

	current, err := program.ParseDates(assignment.TrainingDates)
	if err != nil {
		return nil, fmt.Errorf("stored training dates are malformed: %w", err)
	}

	// Newly introduced dates cannot lie in the past. Dates already on the
	// schedule may be past; keeping them is not an edit.
	today := program.Today(s.loc)
	if err := rejectNewPastDates(current, proposedDates, today); err != nil {
		metrics.ScheduleEditsBlockedTotal.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}

	completions, err := s.completionRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	next, err := program.Reconcile(current, program.CompletedDates(completions), proposedDates, isReassignment)
	if err != nil {
		var pv *program.PolicyViolationError
		if errors.As(err, &pv) {
			metrics.ScheduleEditsBlockedTotal.WithLabelValues(metrics.ReasonPolicyViolation).Inc()
		}
		return nil, err
	}

	// One document write: concurrent edits resolve last-write-wins and can
	// never interleave into a mixed schedule.
	if err := s.assignmentRepo.ReplaceTrainingDates(ctx, assignmentID, program.Strings(next)); err != nil {
		return nil, err
	}
	if isReassignment {
		metrics.ReassignmentsTotal.Inc()
	}

	assignment.TrainingDates = program.Strings(next)
	return assignment, nil
}

// GetSchedule derives the full schedule view for a requester allowed to see
// the assignment.
func (s *scheduleService) GetSchedule(ctx context.Context, requester *domain.User, assignmentID primitive.ObjectID) (*ScheduleView, error) {
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

	template, err := s.programRepo.GetByID(ctx, assignment.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	completions, err := s.completionRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	days, err := program.ResolveSchedule(assignment.TrainingDates, completions, program.Today(s.loc))
	if err != nil {
		return nil, fmt.Errorf("stored training dates are malformed: %w", err)
	}

	return &ScheduleView{
		Assignment: assignment,
		Weeks:      program.Repeat(template.Weeks, len(assignment.TrainingDates)),
		Days:       days,
	}, nil
}

// GetAssignmentsByCoach lists assignments the coach created.
func (s *scheduleService) GetAssignmentsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.assignmentRepo.GetByCoachID(ctx, coachID)
}

// GetAssignmentsForAthlete lists the athlete's individual assignments plus
// assignments targeting the athlete's group.
func (s *scheduleService) GetAssignmentsForAthlete(ctx context.Context, athlete *domain.User) ([]domain.ProgramAssignment, error) {
	if athlete == nil || athlete.ID == primitive.NilObjectID {
		return nil, errors.New("athlete is required")
	}

	individual, err := s.assignmentRepo.GetByAthleteID(ctx, athlete.ID)
	if err != nil {
		return nil, err
	}
	if athlete.GroupID == nil {
		return individual, nil
	}

	grouped, err := s.assignmentRepo.GetByGroupIDs(ctx, []primitive.ObjectID{*athlete.GroupID})
	if err != nil {
		return nil, err
	}
	return append(individual, grouped...), nil
}

// UpdateAssignmentStatus moves the assignment lifecycle (pause, cancel,
// complete) under coach ownership.
func (s *scheduleService) UpdateAssignmentStatus(ctx context.Context, coachID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) error {
	switch status {
	case domain.AssignmentActive, domain.AssignmentCompleted, domain.AssignmentPaused, domain.AssignmentCancelled:
	default:
		return fmt.Errorf("invalid assignment status %q", status)
	}
	if _, err := s.getOwnedAssignment(ctx, assignmentID, coachID); err != nil {
		return err
	}
	return s.assignmentRepo.UpdateStatus(ctx, assignmentID, status)
}

// checkTarget validates the individual/group target and returns the
// assignment type.
func (s *scheduleService) checkTarget(ctx context.Context, coachID primitive.ObjectID, athleteID, groupID *primitive.ObjectID) (domain.AssignmentType, error) {
	switch {
	case athleteID != nil && groupID == nil:
		athlete, err := s.userRepo.GetByID(ctx, *athleteID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", ErrAthleteNotFound
			}
			return "", err
		}
		if !athlete.IsAthlete() || athlete.CoachID == nil || *athlete.CoachID != coachID {
			return "", ErrAthleteNotManaged
		}
		return domain.AssignmentIndividual, nil

	case groupID != nil && athleteID == nil:
		group, err := s.groupRepo.GetByID(ctx, *groupID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", ErrGroupNotFound
			}
			return "", err
		}
		if group.CoachID != coachID {
			return "", ErrGroupNotOwned
		}
		return domain.AssignmentGroup, nil

	default:
		return "", ErrInvalidAssignmentTarget
	}
}

// getOwnedAssignment fetches an assignment and verifies the coach owns it.
func (s *scheduleService) getOwnedAssignment(ctx context.Context, assignmentID, coachID primitive.ObjectID) (*domain.ProgramAssignment, error) {
	if assignmentID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return nil, errors.New("assignment ID and coach ID are required")
	}
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CoachID != coachID {
		return nil, ErrAssignmentAccessDenied
	}
	return assignment, nil
}

// canViewAssignment: the owning coach, the assigned athlete (directly or via
// group membership), and admins may read an assignment.
func canViewAssignment(u *domain.User, a *domain.ProgramAssignment) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() || a.CoachID == u.ID {
		return true
	}
	if a.AthleteID != nil && *a.AthleteID == u.ID {
		return true
	}
	if a.GroupID != nil && u.GroupID != nil && *a.GroupID == *u.GroupID {
		return true
	}
	return false
}

// rejectNewPastDates fails when the proposal introduces a date before today
// that the current schedule does not already contain.
func rejectNewPastDates(current, proposed []program.Date, today program.Date) error {
	currentSet := make(map[program.Date]struct{}, len(current))
	for _, d := range current {
		currentSet[d] = struct{}{}
	}
	for _, d := range proposed {
		if _, ok := currentSet[d]; ok {
			continue
		}
		if d.Before(today) {
			return fmt.Errorf("%w: %s", program.ErrPastDate, d)
		}
	}
	return nil
}
