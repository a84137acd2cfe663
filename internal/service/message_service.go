package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

// MessageService appends to and reads the persisted per-room chat log.
type MessageService interface {
	Append(ctx context.Context, room string, senderID *string, content string) (*domain.Message, error)
	History(ctx context.Context, room string, limit int) ([]domain.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
}

func NewMessageService(messages repository.MessageRepository) MessageService {
	return &messageService{messages: messages}
}

func (s *messageService) Append(ctx context.Context, room string, senderID *string, content string) (*domain.Message, error) {
	if strings.TrimSpace(room) == "" {
		return nil, fmt.Errorf("%w: room is required", domain.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	msg := &domain.Message{
		ID:       uuid.NewString(),
		Room:     room,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) History(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	return s.messages.ListByRoom(ctx, room, limit)
}
