package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

// Favorite toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// CreateStoryInput carries the author-supplied fields for a new story.
type CreateStoryInput struct {
	Title   string
	Excerpt string
	Body    string
	Tags    []string
	Type    domain.StoryType
	Price   *int64
}

// StoryService coordinates story level operations backed by repositories.
type StoryService interface {
	Create(ctx context.Context, authorID string, in CreateStoryInput) (*domain.Story, error)
	List(ctx context.Context, query string) ([]domain.Story, error)
	Get(ctx context.Context, id string) (*domain.Story, error)
	Delete(ctx context.Context, id string, requester *domain.User) error
	ToggleFavorite(ctx context.Context, userID, storyID string) (string, error)
}

type storyService struct {
	stories   repository.StoryRepository
	favorites repository.FavoriteRepository
}

func NewStoryService(stories repository.StoryRepository, favorites repository.FavoriteRepository) StoryService {
	return &storyService{
		stories:   stories,
		favorites: favorites,
	}
}

func (s *storyService) Create(ctx context.Context, authorID string, in CreateStoryInput) (*domain.Story, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("%w: body is required", domain.ErrValidation)
	}

	if in.Type == "" {
		in.Type = domain.StoryTypeFree
	}
	if !domain.ValidStoryType(in.Type) {
		return nil, fmt.Errorf("%w: unknown story type %q", domain.ErrValidation, in.Type)
	}

	// a price on anything but a sale story is dropped, so a stored price
	// always implies the sale type
	price := in.Price
	if in.Type != domain.StoryTypeSale {
		price = nil
	} else if price == nil || *price <= 0 {
		return nil, fmt.Errorf("%w: sale stories need a positive price", domain.ErrValidation)
	}

	story := &domain.Story{
		ID:      uuid.NewString(),
		UserID:  authorID,
		Title:   in.Title,
		Excerpt: in.Excerpt,
		Body:    in.Body,
		Tags:    in.Tags,
		Type:    in.Type,
		Price:   price,
	}
	if story.Tags == nil {
		story.Tags = []string{}
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

func (s *storyService) List(ctx context.Context, query string) ([]domain.Story, error) {
	return s.stories.List(ctx, strings.TrimSpace(query))
}

func (s *storyService) Get(ctx context.Context, id string) (*domain.Story, error) {
	return s.stories.Get(ctx, id)
}

// Delete removes a story for its author or any admin. Favorites referencing
// the story go with it.
func (s *storyService) Delete(ctx context.Context, id string, requester *domain.User) error {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return err
	}

	if story.UserID != requester.ID && !requester.IsAdmin() {
		return domain.ErrForbidden
	}

	return s.stories.Delete(ctx, id)
}

func (s *storyService) ToggleFavorite(ctx context.Context, userID, storyID string) (string, error) {
	added, err := s.favorites.Toggle(ctx, userID, storyID)
	if err != nil {
		return "", err
	}
	if added {
		return FavoriteAdded, nil
	}
	return FavoriteRemoved, nil
}
