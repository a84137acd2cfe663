package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

// AnnouncementService manages admin broadcast notices.
type AnnouncementService interface {
	Post(ctx context.Context, author *domain.User, content string, pinned bool) (*domain.Announcement, error)
	List(ctx context.Context) ([]domain.Announcement, error)
}

type announcementService struct {
	announcements repository.AnnouncementRepository
}

func NewAnnouncementService(announcements repository.AnnouncementRepository) AnnouncementService {
	return &announcementService{announcements: announcements}
}

func (s *announcementService) Post(ctx context.Context, author *domain.User, content string, pinned bool) (*domain.Announcement, error) {
	if !author.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	a := &domain.Announcement{
		ID:      uuid.NewString(),
		AdminID: author.ID,
		Content: content,
		Pinned:  pinned,
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *announcementService) List(ctx context.Context) ([]domain.Announcement, error) {
	return s.announcements.List(ctx)
}
