package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

// Descriptor is a simulated payment reference. It is never persisted and no
// settlement happens behind it.
type Descriptor struct {
	Reference  string
	StoryID    string
	Amount     int64
	Currency   string
	PaymentURL string
}

// CheckoutService produces simulated payment descriptors for priced stories.
type CheckoutService interface {
	Checkout(ctx context.Context, storyID string) (*Descriptor, error)
}

type checkoutService struct {
	stories repository.StoryRepository
}

func NewCheckoutService(stories repository.StoryRepository) CheckoutService {
	return &checkoutService{stories: stories}
}

func (s *checkoutService) Checkout(ctx context.Context, storyID string) (*Descriptor, error) {
	story, err := s.stories.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}

	if story.Price == nil {
		return nil, domain.ErrNotForSale
	}

	ref := uuid.NewString()
	return &Descriptor{
		Reference:  ref,
		StoryID:    story.ID,
		Amount:     *story.Price,
		Currency:   "USD",
		PaymentURL: fmt.Sprintf("https://pay.example.com/checkout/%s", ref),
	}, nil
}
