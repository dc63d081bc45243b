package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidPeriod        = errors.New("subscription end date must be after start date")
)

// SubscriptionService tracks membership periods. Payments are handled
// outside this system; only period and status live here.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, userID primitive.ObjectID, plan string, start, end time.Time) (*domain.Subscription, error)
	GetSubscriptionsForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID primitive.ObjectID) error
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
}

// NewSubscriptionService creates a new instance of subscriptionService.
func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, userRepo repository.UserRepository) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
	}
}

// CreateSubscription opens a membership period for a user.
func (s *subscriptionService) CreateSubscription(ctx context.Context, userID primitive.ObjectID, plan string, start, end time.Time) (*domain.Subscription, error) {
	if userID == primitive.NilObjectID || plan == "" {
		return nil, errors.New("user ID and plan are required")
	}
	if !end.After(start) {
		return nil, ErrInvalidPeriod
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	sub := &domain.Subscription{
		UserID:    userID,
		Plan:      plan,
		StartDate: start,
		EndDate:   end,
		Status:    domain.SubscriptionActive,
	}
	subID, err := s.subscriptionRepo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = subID
	return sub, nil
}

// GetSubscriptionsForUser lists a user's subscriptions with expiry derived
// from the period.
func (s *subscriptionService) GetSubscriptionsForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	subs, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range subs {
		subs[i].Status = subs[i].EffectiveStatus(now)
	}
	return subs, nil
}

// ListSubscriptions lists every subscription, for the admin console.
func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	subs, err := s.subscriptionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range subs {
		subs[i].Status = subs[i].EffectiveStatus(now)
	}
	return subs, nil
}

// CancelSubscription marks a subscription cancelled.
func (s *subscriptionService) CancelSubscription(ctx context.Context, subscriptionID primitive.ObjectID) error {
	if subscriptionID == primitive.NilObjectID {
		return errors.New("subscription ID is required")
	}
	if _, err := s.subscriptionRepo.GetByID(ctx, subscriptionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return s.subscriptionRepo.UpdateStatus(ctx, subscriptionID, domain.SubscriptionCancelled)
}
