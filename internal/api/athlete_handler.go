package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/program"
	"hyperkids/gym-app/internal/repository"
	"hyperkids/gym-app/internal/service"
)

// AthleteHandler serves the athlete-facing surface: own assignments and
// completion recording.
type AthleteHandler struct {
	scheduleService   service.ScheduleService
	completionService service.CompletionService
	userRepo          repository.UserRepository
}

func NewAthleteHandler(
	scheduleService service.ScheduleService,
	completionService service.CompletionService,
	userRepo repository.UserRepository,
) *AthleteHandler {
	return &AthleteHandler{
		scheduleService:   scheduleService,
		completionService: completionService,
		userRepo:          userRepo,
	}
}

// --- DTOs ---

type RecordCompletionRequest struct {
	Date   string                  `json:"date" binding:"required"`
	Status domain.CompletionStatus `json:"status" binding:"required,oneof=completed missed"`
	Notes  string                  `json:"notes"`
}

type CompletionResponse struct {
	ID            string                  `json:"id"`
	AssignmentID  string                  `json:"assignmentId"`
	AthleteID     string                  `json:"athleteId"`
	ScheduledDate string                  `json:"scheduledDate"`
	Status        domain.CompletionStatus `json:"status"`
	Notes         string                  `json:"notes,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// --- Handler Methods ---

// GetMyAssignments lists the athlete's individual assignments plus group
// assignments via membership.
func (h *AthleteHandler) GetMyAssignments(c *gin.Context) {
	athlete, ok := h.loadAthlete(c)
	if !ok {
		return
	}

	assignments, err := h.scheduleService.GetAssignmentsForAthlete(c.Request.Context(), athlete)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}
	c.JSON(http.StatusOK, mapAssignmentsResponse(assignments))
}

// RecordCompletion stores the outcome of one scheduled session.
func (h *AthleteHandler) RecordCompletion(c *gin.Context) {
	athlete, ok := h.loadAthlete(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	var req RecordCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	completion, err := h.completionService.RecordCompletion(c.Request.Context(), athlete, assignmentID, req.Date, req.Status, req.Notes)
	if err != nil {
		respondCompletionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapCompletionResponse(completion))
}

// GetCompletions lists the completion history of one of the athlete's
// assignments.
func (h *AthleteHandler) GetCompletions(c *gin.Context) {
	athlete, ok := h.loadAthlete(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	completions, err := h.completionService.GetCompletions(c.Request.Context(), athlete, assignmentID)
	if err != nil {
		respondCompletionError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapCompletionsResponse(completions))
}

func (h *AthleteHandler) loadAthlete(c *gin.Context) (*domain.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authenticated user no longer exists.")
		return nil, false
	}
	return user, true
}

func respondCompletionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrCompletionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAssignedToAthlete),
		errors.Is(err, service.ErrAssignmentAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCompletionExists),
		errors.Is(err, service.ErrAssignmentNotActive):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDateNotScheduled),
		errors.Is(err, service.ErrDateInFuture),
		errors.Is(err, program.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Completion operation failed.")
	}
}

func mapCompletionResponse(completion *domain.WorkoutCompletion) CompletionResponse {
	return CompletionResponse{
		ID:            completion.ID.Hex(),
		AssignmentID:  completion.AssignmentID.Hex(),
		AthleteID:     completion.AthleteID.Hex(),
		ScheduledDate: completion.ScheduledDate,
		Status:        completion.Status,
		Notes:         completion.Notes,
		CreatedAt:     completion.CreatedAt,
	}
}

func mapCompletionsResponse(completions []domain.WorkoutCompletion) []CompletionResponse {
	out := make([]CompletionResponse, len(completions))
	for i := range completions {
		out[i] = mapCompletionResponse(&completions[i])
	}
	return out
}
