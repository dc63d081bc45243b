package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/service"
)

// AdminHandler serves the admin console: subscription management and
// completion overrides.
type AdminHandler struct {
	subscriptionService service.SubscriptionService
	completionService   service.CompletionService
}

func NewAdminHandler(
	subscriptionService service.SubscriptionService,
	completionService service.CompletionService,
) *AdminHandler {
	return &AdminHandler{
		subscriptionService: subscriptionService,
		completionService:   completionService,
	}
}

// --- DTOs ---

type CreateSubscriptionRequest struct {
	UserID    string    `json:"userId" binding:"required"`
	Plan      string    `json:"plan" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

type SubscriptionResponse struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"userId"`
	Plan      string                    `json:"plan"`
	StartDate time.Time                 `json:"startDate"`
	EndDate   time.Time                 `json:"endDate"`
	Status    domain.SubscriptionStatus `json:"status"`
}

type OverrideCompletionRequest struct {
	Status domain.CompletionStatus `json:"status" binding:"required,oneof=completed missed"`
}

// --- Handler Methods ---

// CreateSubscription opens a membership period for a user.
func (h *AdminHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := optionalObjectID(c, &req.UserID, "userId")
	if !ok {
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), *userID, req.Plan, req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create subscription.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapSubscriptionResponse(sub))
}

// ListSubscriptions lists every subscription.
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve subscriptions.")
		return
	}

	out := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		out[i] = mapSubscriptionResponse(&subs[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetMySubscriptions lists the authenticated user's own subscriptions. Any
// role may call it.
func (h *AdminHandler) GetMySubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.GetSubscriptionsForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve subscriptions.")
		return
	}

	out := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		out[i] = mapSubscriptionResponse(&subs[i])
	}
	c.JSON(http.StatusOK, out)
}

// CancelSubscription marks a subscription cancelled.
func (h *AdminHandler) CancelSubscription(c *gin.Context) {
	subID, ok := pathObjectID(c, "subscriptionId")
	if !ok {
		return
	}

	if err := h.subscriptionService.CancelSubscription(c.Request.Context(), subID); err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to cancel subscription.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// OverrideCompletion rewrites a completion record's status.
func (h *AdminHandler) OverrideCompletion(c *gin.Context) {
	completionID, ok := pathObjectID(c, "completionId")
	if !ok {
		return
	}

	var req OverrideCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	completion, err := h.completionService.OverrideCompletion(c.Request.Context(), completionID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrCompletionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to override completion.")
		}
		return
	}
	c.JSON(http.StatusOK, mapCompletionResponse(completion))
}

func mapSubscriptionResponse(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        s.ID.Hex(),
		UserID:    s.UserID.Hex(),
		Plan:      s.Plan,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Status:    s.Status,
	}
}
