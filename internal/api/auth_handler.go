package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=coach athlete"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	CreatedAt  time.Time   `json:"createdAt"`
	AthleteIDs []string    `json:"athleteIds,omitempty"`
	CoachID    *string     `json:"coachId,omitempty"`
	GroupID    *string     `json:"groupId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register creates a new coach or athlete account. Admin accounts are
// provisioned out of band.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else if errors.Is(err, service.ErrTokenGeneration) {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}

	if len(user.AthleteIDs) > 0 {
		resp.AthleteIDs = make([]string, len(user.AthleteIDs))
		for i, id := range user.AthleteIDs {
			resp.AthleteIDs[i] = id.Hex()
		}
	}
	if user.CoachID != nil && *user.CoachID != primitive.NilObjectID {
		coachIDHex := (*user.CoachID).Hex()
		resp.CoachID = &coachIDHex
	}
	if user.GroupID != nil && *user.GroupID != primitive.NilObjectID {
		groupIDHex := (*user.GroupID).Hex()
		resp.GroupID = &groupIDHex
	}
	return resp
}

// MapUsersToResponse converts a slice of domain.User to UserResponse DTOs.
func MapUsersToResponse(users []domain.User) []UserResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = MapUserToResponse(&users[i])
	}
	return userResponses
}
