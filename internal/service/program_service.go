package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
	"hyperkids/gym-app/internal/storage"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("program template not found")
	ErrTemplateAccessDenied = errors.New("access denied to this program template")
	ErrTemplateInUse        = errors.New("program template has assignments and cannot be modified")
	ErrTemplateEmpty        = errors.New("program template must contain at least one training day")
	ErrNoVideoForExercise   = errors.New("exercise has no demo video")
)

// ProgramService manages the reusable program templates coaches build.
// Templates referenced by at least one assignment are frozen: assignments
// snapshot nothing, so editing a live template would silently rewrite every
// athlete's program.
type ProgramService interface {
	CreateTemplate(ctx context.Context, coachID primitive.ObjectID, template *domain.ProgramTemplate) (*domain.ProgramTemplate, error)
	GetTemplateByID(ctx context.Context, templateID, requesterID primitive.ObjectID) (*domain.ProgramTemplate, error)
	GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramTemplate, error)
	UpdateTemplate(ctx context.Context, coachID primitive.ObjectID, template *domain.ProgramTemplate) (*domain.ProgramTemplate, error)
	DeleteTemplate(ctx context.Context, templateID, coachID primitive.ObjectID) error
	// ExerciseVideoURL resolves a template exercise's demo video to a
	// temporary download URL.
	ExerciseVideoURL(ctx context.Context, templateID, exerciseID, requesterID primitive.ObjectID) (string, error)
}

type programService struct {
	programRepo    repository.ProgramRepository
	assignmentRepo repository.AssignmentRepository
	fileStorage    storage.FileStorage
}

// NewProgramService creates a new instance of programService.
func NewProgramService(
	programRepo repository.ProgramRepository,
	assignmentRepo repository.AssignmentRepository,
	fileStorage storage.FileStorage,
) ProgramService {
	return &programService{
		programRepo:    programRepo,
		assignmentRepo: assignmentRepo,
		fileStorage:    fileStorage,
	}
}

// CreateTemplate validates and stores a new program template for the coach.
func (s *programService) CreateTemplate(ctx context.Context, coachID primitive.ObjectID, template *domain.ProgramTemplate) (*domain.ProgramTemplate, error) {
	if coachID == primitive.NilObjectID || template == nil || template.Name == "" {
		return nil, errors.New("coach ID and template name are required")
	}
	if template.TotalDays() == 0 {
		return nil, ErrTemplateEmpty
	}

	template.CoachID = coachID
	templateID, err := s.programRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = templateID
	return template, nil
}

// GetTemplateByID fetches a template, enforcing coach ownership. Athletes
// read templates through the schedule view, never directly.
func (s *programService) GetTemplateByID(ctx context.Context, templateID, requesterID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	template, err := s.getOwnedTemplate(ctx, templateID, requesterID)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// GetTemplatesByCoach lists all templates owned by the coach.
func (s *programService) GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.programRepo.GetByCoachID(ctx, coachID)
}

// UpdateTemplate replaces a template's content. Refused once any assignment
// references the template; the coach must create a new template instead.
func (s *programService) UpdateTemplate(ctx context.Context, coachID primitive.ObjectID, template *domain.ProgramTemplate) (*domain.ProgramTemplate, error) {
	if template == nil || template.ID == primitive.NilObjectID {
		return nil, errors.New("template ID is required")
	}
	existing, err := s.getOwnedTemplate(ctx, template.ID, coachID)
	if err != nil {
		return nil, err
	}

	if err := s.requireUnused(ctx, existing.ID); err != nil {
		return nil, err
	}
	if template.TotalDays() == 0 {
		return nil, ErrTemplateEmpty
	}

	template.CoachID = existing.CoachID
	template.CreatedAt = existing.CreatedAt
	if err := s.programRepo.Update(ctx, template); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes a template the coach owns, if nothing references
// it, together with the demo videos only it referenced.
func (s *programService) DeleteTemplate(ctx context.Context, templateID, coachID primitive.ObjectID) error {
	template, err := s.getOwnedTemplate(ctx, templateID, coachID)
	if err != nil {
		return err
	}
	if err := s.requireUnused(ctx, templateID); err != nil {
		return err
	}

	err = s.programRepo.Delete(ctx, templateID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateNotFound
	}
	if err != nil {
		return err
	}

	// Best effort: the template row is gone either way, a leaked object only
	// costs storage.
	for _, key := range videoObjectKeys(template.Weeks) {
		if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
			log.Printf("WARN: Could not delete demo video object %q: %v", key, err)
		}
	}
	return nil
}

// ExerciseVideoURL locates the exercise within the template's expanded weeks
// and presigns its stored demo video for viewing.
func (s *programService) ExerciseVideoURL(ctx context.Context, templateID, exerciseID, requesterID primitive.ObjectID) (string, error) {
	template, err := s.getOwnedTemplate(ctx, templateID, requesterID)
	if err != nil {
		return "", err
	}

	exercise := findExercise(template.Weeks, exerciseID)
	if exercise == nil {
		return "", errors.New("exercise not found in template")
	}
	if exercise.VideoObjectKey == "" {
		return "", ErrNoVideoForExercise
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoObjectKey, 15*time.Minute)
}

// getOwnedTemplate fetches a template and verifies the requester owns it.
func (s *programService) getOwnedTemplate(ctx context.Context, templateID, requesterID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	if templateID == primitive.NilObjectID || requesterID == primitive.NilObjectID {
		return nil, errors.New("template ID and requester ID are required")
	}
	template, err := s.programRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.CoachID != requesterID {
		return nil, ErrTemplateAccessDenied
	}
	return template, nil
}

// requireUnused rejects structural changes once assignments reference the
// template.
func (s *programService) requireUnused(ctx context.Context, templateID primitive.ObjectID) error {
	count, err := s.assignmentRepo.CountByTemplateID(ctx, templateID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTemplateInUse
	}
	return nil
}

func videoObjectKeys(weeks []domain.TemplateWeek) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, w := range weeks {
		for _, d := range w.Days {
			for _, b := range d.Blocks {
				for _, e := range b.Exercises {
					if e.VideoObjectKey == "" {
						continue
					}
					if _, ok := seen[e.VideoObjectKey]; ok {
						continue
					}
					seen[e.VideoObjectKey] = struct{}{}
					keys = append(keys, e.VideoObjectKey)
				}
			}
		}
	}
	return keys
}

func findExercise(weeks []domain.TemplateWeek, exerciseID primitive.ObjectID) *domain.TemplateExercise {
	for wi := range weeks {
		for di := range weeks[wi].Days {
			for bi := range weeks[wi].Days[di].Blocks {
				for ei := range weeks[wi].Days[di].Blocks[bi].Exercises {
					ex := &weeks[wi].Days[di].Blocks[bi].Exercises[ei]
					if ex.ID == exerciseID {
						return ex
					}
				}
			}
		}
	}
	return nil
}
