package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAthleteNotFound        = errors.New("athlete user not found")
	ErrAthleteNotRole         = errors.New("user found but is not an athlete")
	ErrAthleteAlreadyAttached = errors.New("athlete is already attached to a coach")
	ErrGroupNotFound          = errors.New("group not found")
	ErrAthleteAlreadyGrouped  = errors.New("athlete already belongs to a group")
	ErrAthleteNotInGroup      = errors.New("athlete is not in this group")
)

// CoachService manages a coach's roster and athlete groups.
type CoachService interface {
	// Roster
	AddAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error)
	GetManagedAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)

	// Groups
	CreateGroup(ctx context.Context, coachID primitive.ObjectID, name, description string) (*domain.Group, error)
	GetGroups(ctx context.Context, coachID primitive.ObjectID) ([]domain.Group, error)
	AddAthleteToGroup(ctx context.Context, coachID, groupID, athleteID primitive.ObjectID) error
	RemoveAthleteFromGroup(ctx context.Context, coachID, groupID, athleteID primitive.ObjectID) error
	DeleteGroup(ctx context.Context, coachID, groupID primitive.ObjectID) error
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(userRepo repository.UserRepository, groupRepo repository.GroupRepository) CoachService {
	return &coachService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
	}
}

// === Roster ===

// AddAthleteByEmail finds an athlete by email and attaches them to the coach.
func (s *coachService) AddAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error) {
	if coachID == primitive.NilObjectID || athleteEmail == "" {
		return nil, errors.New("coach ID and athlete email are required")
	}

	athlete, err := s.userRepo.GetByEmail(ctx, athleteEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrAthleteNotRole
	}

	if athlete.CoachID != nil && *athlete.CoachID != primitive.NilObjectID {
		if *athlete.CoachID == coachID {
			// Already on this coach's roster.
			return athlete, nil
		}
		return nil, ErrAthleteAlreadyAttached
	}

	// Both sides of the relation are updated; the unique email index plus
	// idempotent $addToSet keep a retried request harmless.
	if err := s.userRepo.AddAthleteToCoach(ctx, coachID, athlete.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForAthlete(ctx, athlete.ID, coachID); err != nil {
		return nil, err
	}

	athlete.CoachID = &coachID
	athlete.PasswordHash = ""
	return athlete, nil
}

// GetManagedAthletes retrieves the coach's roster.
func (s *coachService) GetManagedAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	athletes, err := s.userRepo.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	return athletes, nil
}

// === Groups ===

// CreateGroup creates a new empty athlete group owned by the coach.
func (s *coachService) CreateGroup(ctx context.Context, coachID primitive.ObjectID, name, description string) (*domain.Group, error) {
	if coachID == primitive.NilObjectID || name == "" {
		return nil, errors.New("coach ID and group name are required")
	}
	group := &domain.Group{
		CoachID:     coachID,
		Name:        name,
		Description: description,
	}
	groupID, err := s.groupRepo.Create(ctx, group)
	if err != nil {
		return nil, err
	}
	group.ID = groupID
	return group, nil
}

// GetGroups lists the groups owned by the coach.
func (s *coachService) GetGroups(ctx context.Context, coachID primitive.ObjectID) ([]domain.Group, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.groupRepo.GetByCoachID(ctx, coachID)
}

// AddAthleteToGroup puts a managed athlete into one of the coach's groups.
// An athlete belongs to at most one group at a time.
func (s *coachService) AddAthleteToGroup(ctx context.Context, coachID, groupID, athleteID primitive.ObjectID) error {
	group, athlete, err := s.getGroupAndAthlete(ctx, coachID, groupID, athleteID)
	if err != nil {
		return err
	}
	if athlete.GroupID != nil {
		if *athlete.GroupID == group.ID {
			return nil // already a member
		}
		return ErrAthleteAlreadyGrouped
	}

	if err := s.groupRepo.AddAthlete(ctx, groupID, athleteID); err != nil {
		return err
	}
	return s.userRepo.SetGroupForAthlete(ctx, athleteID, &groupID)
}

// RemoveAthleteFromGroup takes an athlete out of a group. Group assignments
// the athlete participated in keep their completion history.
func (s *coachService) RemoveAthleteFromGroup(ctx context.Context, coachID, groupID, athleteID primitive.ObjectID) error {
	group, athlete, err := s.getGroupAndAthlete(ctx, coachID, groupID, athleteID)
	if err != nil {
		return err
	}
	if athlete.GroupID == nil || *athlete.GroupID != group.ID {
		return ErrAthleteNotInGroup
	}

	if err := s.groupRepo.RemoveAthlete(ctx, groupID, athleteID); err != nil {
		return err
	}
	return s.userRepo.SetGroupForAthlete(ctx, athleteID, nil)
}

// DeleteGroup removes a group the coach owns and detaches its members.
func (s *coachService) DeleteGroup(ctx context.Context, coachID, groupID primitive.ObjectID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if group.CoachID != coachID {
		return ErrGroupNotOwned
	}

	for _, athleteID := range group.AthleteIDs {
		if err := s.userRepo.SetGroupForAthlete(ctx, athleteID, nil); err != nil {
			return err
		}
	}
	return s.groupRepo.Delete(ctx, groupID, coachID)
}

// getGroupAndAthlete loads both sides of a membership change and checks the
// coach owns the group and manages the athlete.
func (s *coachService) getGroupAndAthlete(ctx context.Context, coachID, groupID, athleteID primitive.ObjectID) (*domain.Group, *domain.User, error) {
	if coachID == primitive.NilObjectID || groupID == primitive.NilObjectID || athleteID == primitive.NilObjectID {
		return nil, nil, errors.New("coach ID, group ID, and athlete ID are required")
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, err
	}
	if group.CoachID != coachID {
		return nil, nil, ErrGroupNotOwned
	}

	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAthleteNotFound
		}
		return nil, nil, err
	}
	if !athlete.IsAthlete() || athlete.CoachID == nil || *athlete.CoachID != coachID {
		return nil, nil, ErrAthleteNotManaged
	}
	return group, athlete, nil
}
