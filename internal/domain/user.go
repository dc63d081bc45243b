package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleCoach   Role = "coach"
	RoleAthlete Role = "athlete"
)

// User represents a user in the system (admin, coach or athlete).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Coach-specific ---
	// Stores ObjectIDs of Athletes managed by this Coach.
	AthleteIDs []primitive.ObjectID `bson:"athleteIds,omitempty" json:"athleteIds,omitempty"`

	// --- Athlete-specific ---
	// The Coach managing this Athlete and the Group the athlete belongs to.
	// Pointers because an athlete might not be attached immediately.
	CoachID *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
	GroupID *primitive.ObjectID `bson:"groupId,omitempty" json:"groupId,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsAthlete() bool {
	return u.Role == RoleAthlete
}
