package service

import (
	"context"
	"fmt"

	"dmchat/internal/domain"
)

// ConversationService derives per-partner conversation summaries from the
// flat message table and owns the read-state transition.
type ConversationService struct {
	messages domain.MessageRepository
	users    domain.UserRepository
}

func NewConversationService(messages domain.MessageRepository, users domain.UserRepository) *ConversationService {
	return &ConversationService{
		messages: messages,
		users:    users,
	}
}

// ListForUser folds the user's messages, newest first, into one Conversation
// per distinct partner. The first message seen for a partner is necessarily
// their most recent one, so it fixes LastMessage; every unread message
// addressed to the user bumps that partner's UnreadCount. Partners come back
// ordered by the recency of their latest message.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no current user", domain.ErrUnauthorized)
	}

	msgs, err := s.messages.ListInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	byPartner := make(map[string]*domain.Conversation)
	var order []*domain.Conversation
	for _, m := range msgs {
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}
		conv, ok := byPartner[partnerID]
		if !ok {
			conv = &domain.Conversation{
				PartnerID:   partnerID,
				LastMessage: m.Body,
			}
			byPartner[partnerID] = conv
			order = append(order, conv)
		}
		if m.ReceiverID == userID && !m.Read {
			conv.UnreadCount++
		}
	}

	for _, conv := range order {
		conv.PartnerName = s.displayName(ctx, conv.PartnerID)
	}
	return order, nil
}

// MarkRead flips every unread message from partnerID to userID to read.
// Returns how many rows transitioned; zero matches is a no-op, not an error.
func (s *ConversationService) MarkRead(ctx context.Context, userID, partnerID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: no current user", domain.ErrUnauthorized)
	}
	if partnerID == "" {
		return 0, fmt.Errorf("%w: no conversation selected", domain.ErrValidation)
	}

	n, err := s.messages.MarkRead(ctx, userID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrWriteRejected, err)
	}
	return n, nil
}

// ConversationView is what opening a conversation yields: the full thread,
// the refreshed conversation list, and how many messages were just marked read.
type ConversationView struct {
	PartnerID     string                 `json:"partner_id"`
	Thread        []*domain.Message      `json:"thread"`
	Conversations []*domain.Conversation `json:"conversations"`
	MarkedRead    int64                  `json:"marked_read"`
}

// Open makes partnerID the active conversation: it loads the thread, then
// marks the partner's unread messages as read, then re-aggregates the
// conversation list. The list is always recomputed from the store, so a
// failed mark never shows up as an optimistically cleared badge; on error
// the returned view carries whatever the store actually holds.
func (s *ConversationService) Open(ctx context.Context, userID, partnerID string) (*ConversationView, error) {
	thread, err := s.messages.ListThread(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	view := &ConversationView{
		PartnerID: partnerID,
		Thread:    thread,
	}

	marked, markErr := s.MarkRead(ctx, userID, partnerID)
	view.MarkedRead = marked

	convs, listErr := s.ListForUser(ctx, userID)
	view.Conversations = convs

	if markErr != nil {
		return view, markErr
	}
	if listErr != nil {
		return view, listErr
	}
	return view, nil
}

func (s *ConversationService) displayName(ctx context.Context, userID string) string {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		// A partner without a profile row still has message history;
		// fall back to the raw identifier.
		return userID
	}
	return u.Username
}
