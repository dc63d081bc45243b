package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
	"hyperkids/gym-app/internal/training"
)

var (
	ErrInvalidTestInput = errors.New("weight and reps must be positive")
	ErrNoTestResults    = errors.New("athlete has no test results for this exercise")
)

// LoadSuggestion is a derived training load for one exercise: the intensity
// the rep target implies and the working weight it yields from the athlete's
// most recent 1RM estimate.
type LoadSuggestion struct {
	Exercise         string  `json:"exercise"`
	EstimatedOneRM   float64 `json:"estimatedOneRm"`
	TargetReps       int     `json:"targetReps"`
	IntensityPercent float64 `json:"intensityPercent"`
	WorkingWeightKg  float64 `json:"workingWeightKg"`
	// PlateWeightKg is the working weight rounded to 2.5 kg plate increments.
	PlateWeightKg float64 `json:"plateWeightKg"`
}

// TestingService records strength tests and derives 1RM estimates from them.
// The estimate is computed once at creation and stored on the record.
type TestingService interface {
	RecordTestResult(ctx context.Context, coachID, athleteID primitive.ObjectID, exercise string, weightKg float64, reps int, method training.Method, testedAt time.Time) (*domain.TestResult, error)
	GetResultsForAthlete(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID) ([]domain.TestResult, error)
	// SuggestLoad derives intensity and working weight for a rep target from
	// the athlete's most recent test of the exercise.
	SuggestLoad(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID, exercise string, targetReps int) (*LoadSuggestion, error)
}

type testingService struct {
	userRepo       repository.UserRepository
	testResultRepo repository.TestResultRepository
}

// NewTestingService creates a new instance of testingService.
func NewTestingService(userRepo repository.UserRepository, testResultRepo repository.TestResultRepository) TestingService {
	return &testingService{
		userRepo:       userRepo,
		testResultRepo: testResultRepo,
	}
}

// RecordTestResult stores one strength test for a managed athlete.
func (s *testingService) RecordTestResult(ctx context.Context, coachID, athleteID primitive.ObjectID, exercise string, weightKg float64, reps int, method training.Method, testedAt time.Time) (*domain.TestResult, error) {
	if coachID == primitive.NilObjectID || athleteID == primitive.NilObjectID || exercise == "" {
		return nil, errors.New("coach ID, athlete ID, and exercise are required")
	}
	if weightKg <= 0 || reps <= 0 {
		return nil, ErrInvalidTestInput
	}
	if method == "" {
		method = training.MethodBrzycki
	}
	if !method.Valid() {
		return nil, fmt.Errorf("unknown estimation method %q", method)
	}

	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() || athlete.CoachID == nil || *athlete.CoachID != coachID {
		return nil, ErrAthleteNotManaged
	}

	if testedAt.IsZero() {
		testedAt = time.Now()
	}
	result := &domain.TestResult{
		AthleteID:      athleteID,
		CoachID:        coachID,
		Exercise:       exercise,
		WeightKg:       weightKg,
		Reps:           reps,
		Method:         string(method),
		EstimatedOneRM: training.EstimateOneRM(weightKg, reps, method),
		TestedAt:       testedAt,
	}
	resultID, err := s.testResultRepo.Create(ctx, result)
	if err != nil {
		return nil, err
	}
	result.ID = resultID
	return result, nil
}

// GetResultsForAthlete lists an athlete's test history. The athlete, their
// coach, and admins may read it.
func (s *testingService) GetResultsForAthlete(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID) ([]domain.TestResult, error) {
	if requester == nil || athleteID == primitive.NilObjectID {
		return nil, errors.New("requester and athlete ID are required")
	}

	allowed := requester.IsAdmin() || requester.ID == athleteID
	if !allowed && requester.IsCoach() {
		athlete, err := s.userRepo.GetByID(ctx, athleteID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrAthleteNotFound
			}
			return nil, err
		}
		allowed = athlete.CoachID != nil && *athlete.CoachID == requester.ID
	}
	if !allowed {
		return nil, ErrAthleteNotManaged
	}

	return s.testResultRepo.GetByAthleteID(ctx, athleteID)
}

// SuggestLoad picks the athlete's most recent test of the exercise and maps
// the rep target through the intensity table.
func (s *testingService) SuggestLoad(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID, exercise string, targetReps int) (*LoadSuggestion, error) {
	if exercise == "" || targetReps <= 0 {
		return nil, errors.New("exercise and a positive rep target are required")
	}

	results, err := s.GetResultsForAthlete(ctx, requester, athleteID)
	if err != nil {
		return nil, err
	}

	var latest *domain.TestResult
	for i := range results {
		r := &results[i]
		if r.Exercise != exercise {
			continue
		}
		if latest == nil || r.TestedAt.After(latest.TestedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNoTestResults
	}

	intensity := training.IntensityForReps(targetReps)
	return &LoadSuggestion{
		Exercise:         exercise,
		EstimatedOneRM:   latest.EstimatedOneRM,
		TargetReps:       targetReps,
		IntensityPercent: intensity,
		WorkingWeightKg:  training.WorkingWeight(latest.EstimatedOneRM, intensity),
		PlateWeightKg:    training.WorkingWeightRounded(latest.EstimatedOneRM, intensity, 2.5),
	}, nil
}
