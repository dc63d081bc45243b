package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/program"
	"hyperkids/gym-app/internal/repository"
	"hyperkids/gym-app/internal/service"
)

// ScheduleHandler serves assignment creation, schedule edits, and schedule
// views.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	userRepo        repository.UserRepository
}

func NewScheduleHandler(scheduleService service.ScheduleService, userRepo repository.UserRepository) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		userRepo:        userRepo,
	}
}

// --- DTOs ---

type AssignProgramRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	// Exactly one of athleteId/groupId must be set.
	AthleteID     *string  `json:"athleteId"`
	GroupID       *string  `json:"groupId"`
	TrainingDates []string `json:"trainingDates" binding:"required,min=1"`
}

type EditTrainingDatesRequest struct {
	TrainingDates []string `json:"trainingDates" binding:"required,min=1"`
	// IsReassignment consents to dropping completed dates. Their completion
	// records survive as orphaned history.
	IsReassignment bool `json:"isReassignment"`
}

type UpdateAssignmentStatusRequest struct {
	Status domain.AssignmentStatus `json:"status" binding:"required,oneof=active completed paused cancelled"`
}

type AssignmentResponse struct {
	ID            string                  `json:"id"`
	TemplateID    string                  `json:"templateId"`
	CoachID       string                  `json:"coachId"`
	Type          domain.AssignmentType   `json:"assignmentType"`
	AthleteID     *string                 `json:"athleteId,omitempty"`
	GroupID       *string                 `json:"groupId,omitempty"`
	TrainingDates []string                `json:"trainingDates"`
	Status        domain.AssignmentStatus `json:"status"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

type ScheduleResponse struct {
	Assignment AssignmentResponse     `json:"assignment"`
	Weeks      []program.DisplayWeek  `json:"weeks"`
	Days       []program.ScheduledDay `json:"days"`
}

// --- Handler Methods ---

// AssignProgram creates an assignment of one of the coach's templates to an
// athlete or group.
func (h *ScheduleHandler) AssignProgram(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid templateId format.")
		return
	}
	athleteID, ok := optionalObjectID(c, req.AthleteID, "athleteId")
	if !ok {
		return
	}
	groupID, ok := optionalObjectID(c, req.GroupID, "groupId")
	if !ok {
		return
	}

	assignment, err := h.scheduleService.AssignProgram(c.Request.Context(), coachID, templateID, athleteID, groupID, req.TrainingDates)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapAssignmentResponse(assignment))
}

// PreviewWeeks expands a template's week structure for a planned number of
// training dates, for the coach's date-picking UI.
func (h *ScheduleHandler) PreviewWeeks(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'days' must be a non-negative integer.")
		return
	}

	weeks, err := h.scheduleService.PreviewWeeks(c.Request.Context(), coachID, templateID, days)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// EditTrainingDates replaces an assignment's date set. A proposal that drops
// completed dates without isReassignment responds 409 with the offending
// dates and persists nothing.
func (h *ScheduleHandler) EditTrainingDates(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	var req EditTrainingDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	assignment, err := h.scheduleService.EditTrainingDates(c.Request.Context(), coachID, assignmentID, req.TrainingDates, req.IsReassignment)
	if err != nil {
		var pv *program.PolicyViolationError
		if errors.As(err, &pv) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":          pv.Error(),
				"completedDates": program.Strings(pv.CompletedDates),
			})
			return
		}
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAssignmentResponse(assignment))
}

// UpdateAssignmentStatus moves the assignment lifecycle.
func (h *ScheduleHandler) UpdateAssignmentStatus(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	var req UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.scheduleService.UpdateAssignmentStatus(c.Request.Context(), coachID, assignmentID, req.Status); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCoachAssignments lists assignments created by the coach.
func (h *ScheduleHandler) GetCoachAssignments(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	assignments, err := h.scheduleService.GetAssignmentsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}
	c.JSON(http.StatusOK, mapAssignmentsResponse(assignments))
}

// GetSchedule derives the full schedule view of one assignment for any user
// allowed to see it.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	requester, ok := h.loadRequester(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	view, err := h.scheduleService.GetSchedule(c.Request.Context(), requester, assignmentID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{
		Assignment: mapAssignmentResponse(view.Assignment),
		Weeks:      view.Weeks,
		Days:       view.Days,
	})
}

// loadRequester fetches the authenticated user's full record; group-based
// access checks need it.
func (h *ScheduleHandler) loadRequester(c *gin.Context) (*domain.User, bool) {
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

func respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrGroupNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentAccessDenied),
		errors.Is(err, service.ErrTemplateAccessDenied),
		errors.Is(err, service.ErrAthleteNotManaged),
		errors.Is(err, service.ErrGroupNotOwned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAssignmentNotActive):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidAssignmentTarget),
		errors.Is(err, program.ErrPastDate),
		errors.Is(err, program.ErrDuplicateDate),
		errors.Is(err, program.ErrNoTrainingDates),
		errors.Is(err, program.ErrEmptyTemplate),
		errors.Is(err, program.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Schedule operation failed.")
	}
}

func optionalObjectID(c *gin.Context, hex *string, field string) (*primitive.ObjectID, bool) {
	if hex == nil || *hex == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(*hex)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+field+" format.")
		return nil, false
	}
	return &id, true
}

func mapAssignmentResponse(a *domain.ProgramAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:            a.ID.Hex(),
		TemplateID:    a.TemplateID.Hex(),
		CoachID:       a.CoachID.Hex(),
		Type:          a.Type,
		TrainingDates: a.TrainingDates,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.AthleteID != nil {
		hex := a.AthleteID.Hex()
		resp.AthleteID = &hex
	}
	if a.GroupID != nil {
		hex := a.GroupID.Hex()
		resp.GroupID = &hex
	}
	return resp
}

func mapAssignmentsResponse(assignments []domain.ProgramAssignment) []AssignmentResponse {
	out := make([]AssignmentResponse, len(assignments))
	for i := range assignments {
		out[i] = mapAssignmentResponse(&assignments[i])
	}
	return out
}
