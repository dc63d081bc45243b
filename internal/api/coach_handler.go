package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
	"hyperkids/gym-app/internal/service"
	"hyperkids/gym-app/internal/training"
)

// CoachHandler serves roster, group, and strength-test management.
type CoachHandler struct {
	coachService   service.CoachService
	testingService service.TestingService
	userRepo       repository.UserRepository
}

func NewCoachHandler(
	coachService service.CoachService,
	testingService service.TestingService,
	userRepo repository.UserRepository,
) *CoachHandler {
	return &CoachHandler{
		coachService:   coachService,
		testingService: testingService,
		userRepo:       userRepo,
	}
}

// --- DTOs ---

type AddAthleteRequest struct {
	AthleteEmail string `json:"athleteEmail" binding:"required,email"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type GroupMemberRequest struct {
	AthleteID string `json:"athleteId" binding:"required"`
}

type GroupResponse struct {
	ID          string    `json:"id"`
	CoachID     string    `json:"coachId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AthleteIDs  []string  `json:"athleteIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RecordTestResultRequest struct {
	AthleteID string     `json:"athleteId" binding:"required"`
	Exercise  string     `json:"exercise" binding:"required"`
	WeightKg  float64    `json:"weightKg" binding:"required,gt=0"`
	Reps      int        `json:"reps" binding:"required,min=1"`
	Method    string     `json:"method" binding:"omitempty,oneof=brzycki epley average"`
	TestedAt  *time.Time `json:"testedAt"`
}

type TestResultResponse struct {
	ID             string    `json:"id"`
	AthleteID      string    `json:"athleteId"`
	Exercise       string    `json:"exercise"`
	WeightKg       float64   `json:"weightKg"`
	Reps           int       `json:"reps"`
	Method         string    `json:"method"`
	EstimatedOneRM float64   `json:"estimatedOneRm"`
	TestedAt       time.Time `json:"testedAt"`
}

// --- Roster ---

// AddAthleteByEmail attaches an existing athlete account to the coach's
// roster.
func (h *CoachHandler) AddAthleteByEmail(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	athlete, err := h.coachService.AddAthleteByEmail(c.Request.Context(), coachID, req.AthleteEmail)
	if err != nil {
		respondCoachError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(athlete))
}

// GetManagedAthletes lists the coach's roster.
func (h *CoachHandler) GetManagedAthletes(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	athletes, err := h.coachService.GetManagedAthletes(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed athletes.")
		return
	}
	if athletes == nil {
		c.JSON(http.StatusOK, []UserResponse{})
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(athletes))
}

// --- Groups ---

// CreateGroup creates an empty athlete group.
func (h *CoachHandler) CreateGroup(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	group, err := h.coachService.CreateGroup(c.Request.Context(), coachID, req.Name, req.Description)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create group.")
		return
	}
	c.JSON(http.StatusCreated, mapGroupResponse(group))
}

// GetGroups lists the coach's groups.
func (h *CoachHandler) GetGroups(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.coachService.GetGroups(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve groups.")
		return
	}

	out := make([]GroupResponse, len(groups))
	for i := range groups {
		out[i] = mapGroupResponse(&groups[i])
	}
	c.JSON(http.StatusOK, out)
}

// AddAthleteToGroup puts a managed athlete into a group.
func (h *CoachHandler) AddAthleteToGroup(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(c, "groupId")
	if !ok {
		return
	}

	var req GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	athleteID, ok := optionalObjectID(c, &req.AthleteID, "athleteId")
	if !ok {
		return
	}

	if err := h.coachService.AddAthleteToGroup(c.Request.Context(), coachID, groupID, *athleteID); err != nil {
		respondCoachError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveAthleteFromGroup takes an athlete out of a group.
func (h *CoachHandler) RemoveAthleteFromGroup(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(c, "groupId")
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	if err := h.coachService.RemoveAthleteFromGroup(c.Request.Context(), coachID, groupID, athleteID); err != nil {
		respondCoachError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteGroup removes a group and detaches its members.
func (h *CoachHandler) DeleteGroup(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(c, "groupId")
	if !ok {
		return
	}

	if err := h.coachService.DeleteGroup(c.Request.Context(), coachID, groupID); err != nil {
		respondCoachError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Strength tests ---

// RecordTestResult stores a strength test and its derived 1RM estimate.
func (h *CoachHandler) RecordTestResult(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req RecordTestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	athleteID, ok := optionalObjectID(c, &req.AthleteID, "athleteId")
	if !ok {
		return
	}

	testedAt := time.Time{}
	if req.TestedAt != nil {
		testedAt = *req.TestedAt
	}
	result, err := h.testingService.RecordTestResult(c.Request.Context(), coachID, *athleteID,
		req.Exercise, req.WeightKg, req.Reps, training.Method(req.Method), testedAt)
	if err != nil {
		respondCoachError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapTestResultResponse(result))
}

// GetTestResults lists a managed athlete's strength test history.
func (h *CoachHandler) GetTestResults(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	coach, err := h.userRepo.GetByID(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authenticated user no longer exists.")
		return
	}

	results, err := h.testingService.GetResultsForAthlete(c.Request.Context(), coach, athleteID)
	if err != nil {
		respondCoachError(c, err)
		return
	}

	out := make([]TestResultResponse, len(results))
	for i := range results {
		out[i] = mapTestResultResponse(&results[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetLoadSuggestion derives a working weight for an athlete's exercise at a
// rep target, from their most recent strength test.
func (h *CoachHandler) GetLoadSuggestion(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	exercise := c.Query("exercise")
	reps, err := strconv.Atoi(c.Query("reps"))
	if exercise == "" || err != nil || reps <= 0 {
		abortWithError(c, http.StatusBadRequest, "Query parameters 'exercise' and a positive 'reps' are required.")
		return
	}

	coach, err := h.userRepo.GetByID(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authenticated user no longer exists.")
		return
	}

	suggestion, err := h.testingService.SuggestLoad(c.Request.Context(), coach, athleteID, exercise, reps)
	if err != nil {
		respondCoachError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

func respondCoachError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrNoTestResults):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAthleteNotRole),
		errors.Is(err, service.ErrAthleteAlreadyAttached),
		errors.Is(err, service.ErrAthleteNotManaged),
		errors.Is(err, service.ErrGroupNotOwned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAthleteAlreadyGrouped):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAthleteNotInGroup),
		errors.Is(err, service.ErrInvalidTestInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Operation failed.")
	}
}

func mapGroupResponse(g *domain.Group) GroupResponse {
	athleteIDs := make([]string, len(g.AthleteIDs))
	for i, id := range g.AthleteIDs {
		athleteIDs[i] = id.Hex()
	}
	return GroupResponse{
		ID:          g.ID.Hex(),
		CoachID:     g.CoachID.Hex(),
		Name:        g.Name,
		Description: g.Description,
		AthleteIDs:  athleteIDs,
		CreatedAt:   g.CreatedAt,
	}
}

func mapTestResultResponse(r *domain.TestResult) TestResultResponse {
	return TestResultResponse{
		ID:             r.ID.Hex(),
		AthleteID:      r.AthleteID.Hex(),
		Exercise:       r.Exercise,
		WeightKg:       r.WeightKg,
		Reps:           r.Reps,
		Method:         r.Method,
		EstimatedOneRM: r.EstimatedOneRM,
		TestedAt:       r.TestedAt,
	}
}
