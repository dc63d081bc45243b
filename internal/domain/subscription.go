package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus type for membership lifecycle
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription tracks a user's membership period. Payment processing is
// handled outside this system; only the period and status live here.
type Subscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Plan      string             `bson:"plan" json:"plan"` // e.g. "monthly", "annual"
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   time.Time          `bson:"endDate" json:"endDate"`
	Status    SubscriptionStatus `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveStatus reports the status with expiry derived from the period,
// so a lapsed subscription reads as expired without a background job having
// to rewrite it.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionActive && now.After(s.EndDate) {
		return SubscriptionExpired
	}
	return s.Status
}
