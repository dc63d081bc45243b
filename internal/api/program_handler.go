package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/service"
)

// ProgramHandler serves program template management for coaches.
type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type TemplateExerciseRequest struct {
	Name             string   `json:"name" binding:"required"`
	Sets             int      `json:"sets" binding:"required,min=1"`
	Reps             string   `json:"reps" binding:"required"`
	Tempo            string   `json:"tempo"`
	Rest             string   `json:"rest"`
	Sequence         int      `json:"sequence"`
	IntensityPercent *float64 `json:"intensityPercent"`
	VideoObjectKey   string   `json:"videoObjectKey"`
}

type TemplateBlockRequest struct {
	Name      string                    `json:"name" binding:"required"`
	Sequence  int                       `json:"sequence"`
	Exercises []TemplateExerciseRequest `json:"exercises" binding:"required,dive"`
}

type TemplateDayRequest struct {
	DayNumber int                    `json:"dayNumber" binding:"required,min=1"`
	Name      string                 `json:"name"`
	Blocks    []TemplateBlockRequest `json:"blocks" binding:"dive"`
}

type TemplateWeekRequest struct {
	WeekNumber int                  `json:"weekNumber" binding:"required,min=1"`
	Name       string               `json:"name"`
	Days       []TemplateDayRequest `json:"days" binding:"required,min=1,dive"`
}

type ProgramTemplateRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Weeks       []TemplateWeekRequest `json:"weeks" binding:"required,min=1,dive"`
}

type ProgramTemplateResponse struct {
	ID          string                `json:"id"`
	CoachID     string                `json:"coachId"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Weeks       []domain.TemplateWeek `json:"weeks"`
	TotalDays   int                   `json:"totalDays"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// --- Handler Methods ---

// CreateTemplate stores a new program template for the authenticated coach.
func (h *ProgramHandler) CreateTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProgramTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	template, err := h.programService.CreateTemplate(c.Request.Context(), coachID, mapTemplateRequest(&req))
	if err != nil {
		if errors.Is(err, service.ErrTemplateEmpty) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create template.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapTemplateResponse(template))
}

// GetMyTemplates lists the authenticated coach's templates.
func (h *ProgramHandler) GetMyTemplates(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	templates, err := h.programService.GetTemplatesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}

	out := make([]ProgramTemplateResponse, len(templates))
	for i := range templates {
		out[i] = mapTemplateResponse(&templates[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetTemplate returns one template owned by the coach.
func (h *ProgramHandler) GetTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	template, err := h.programService.GetTemplateByID(c.Request.Context(), templateID, coachID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapTemplateResponse(template))
}

// UpdateTemplate replaces a template's content. Templates referenced by an
// assignment are frozen and respond 409.
func (h *ProgramHandler) UpdateTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	var req ProgramTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	template := mapTemplateRequest(&req)
	template.ID = templateID
	updated, err := h.programService.UpdateTemplate(c.Request.Context(), coachID, template)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapTemplateResponse(updated))
}

// DeleteTemplate removes an unused template.
func (h *ProgramHandler) DeleteTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	if err := h.programService.DeleteTemplate(c.Request.Context(), templateID, coachID); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetExerciseVideoURL returns a temporary viewing URL for an exercise's demo
// video.
func (h *ProgramHandler) GetExerciseVideoURL(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	url, err := h.programService.ExerciseVideoURL(c.Request.Context(), templateID, exerciseID, coachID)
	if err != nil {
		if errors.Is(err, service.ErrNoVideoForExercise) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			respondTemplateError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func respondTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTemplateInUse):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTemplateEmpty):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Template operation failed.")
	}
}

func mapTemplateRequest(req *ProgramTemplateRequest) *domain.ProgramTemplate {
	template := &domain.ProgramTemplate{
		Name:        req.Name,
		Description: req.Description,
		Weeks:       make([]domain.TemplateWeek, len(req.Weeks)),
	}
	for wi, w := range req.Weeks {
		week := domain.TemplateWeek{
			WeekNumber: w.WeekNumber,
			Name:       w.Name,
			Days:       make([]domain.TemplateDay, len(w.Days)),
		}
		for di, d := range w.Days {
			day := domain.TemplateDay{
				DayNumber: d.DayNumber,
				Name:      d.Name,
				Blocks:    make([]domain.TemplateBlock, len(d.Blocks)),
			}
			for bi, b := range d.Blocks {
				block := domain.TemplateBlock{
					Name:      b.Name,
					Sequence:  b.Sequence,
					Exercises: make([]domain.TemplateExercise, len(b.Exercises)),
				}
				for ei, e := range b.Exercises {
					block.Exercises[ei] = domain.TemplateExercise{
						Name:             e.Name,
						Sets:             e.Sets,
						Reps:             e.Reps,
						Tempo:            e.Tempo,
						Rest:             e.Rest,
						Sequence:         e.Sequence,
						IntensityPercent: e.IntensityPercent,
						VideoObjectKey:   e.VideoObjectKey,
					}
				}
				day.Blocks[bi] = block
			}
			week.Days[di] = day
		}
		template.Weeks[wi] = week
	}
	return template
}

func mapTemplateResponse(t *domain.ProgramTemplate) ProgramTemplateResponse {
	return ProgramTemplateResponse{
		ID:          t.ID.Hex(),
		CoachID:     t.CoachID.Hex(),
		Name:        t.Name,
		Description: t.Description,
		Weeks:       t.Weeks,
		TotalDays:   t.TotalDays(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
