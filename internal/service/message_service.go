package service

import (
	"context"
	"fmt"
	"strings"

	"dmchat/internal/domain"
)

// MessageService loads message threads and submits outgoing messages.
type MessageService struct {
	messages domain.MessageRepository
	users    domain.UserRepository

	MaxBodyRunes int
}

func NewMessageService(messages domain.MessageRepository, users domain.UserRepository, maxBodyRunes int) *MessageService {
	return &MessageService{
		messages:     messages,
		users:        users,
		MaxBodyRunes: maxBodyRunes,
	}
}

// Thread returns the full history between the current user and the partner,
// oldest first. Callers re-invoke it after every completed mutation; the
// thread is never patched incrementally.
func (s *MessageService) Thread(ctx context.Context, userID, partnerID string) ([]*domain.Message, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no current user", domain.ErrUnauthorized)
	}
	if partnerID == "" {
		return nil, fmt.Errorf("%w: no conversation selected", domain.ErrValidation)
	}

	msgs, err := s.messages.ListThread(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return msgs, nil
}

type SendInput struct {
	SenderID   string
	ReceiverID string
	Body       string
}

// Send validates and stores an outgoing message. All validation happens
// before any store call; a rejected input never reaches the store. The
// message is stored unread: read state is only ever advanced by the
// receiving party through ConversationService.MarkRead.
func (s *MessageService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	if in.SenderID == "" {
		return nil, fmt.Errorf("%w: no authenticated sender", domain.ErrValidation)
	}
	if in.ReceiverID == "" {
		return nil, fmt.Errorf("%w: no recipient selected", domain.ErrValidation)
	}
	if in.ReceiverID == in.SenderID {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrValidation)
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is empty", domain.ErrValidation)
	}
	if s.MaxBodyRunes > 0 && len([]rune(body)) > s.MaxBodyRunes {
		return nil, fmt.Errorf("%w: message body exceeds %d characters", domain.ErrValidation, s.MaxBodyRunes)
	}

	receiver, err := s.users.GetByID(ctx, in.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if receiver == nil {
		return nil, fmt.Errorf("%w: recipient %s", domain.ErrNotFound, in.ReceiverID)
	}

	msg := &domain.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Body:       body,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWriteRejected, err)
	}
	return msg, nil
}
