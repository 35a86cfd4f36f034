package service

import (
	"context"
	"sync"

	"dmchat/internal/domain"
)

// Session holds the conversation state of one signed-in user: the current
// partner selection, the cached conversation and thread views, and the
// pending draft. Operations are sequential request/response calls against
// the store; there is no push, no polling, and no in-flight cancellation.
// Instead, every selection bumps a generation counter and late results are
// applied only if their generation still matches, so a slow thread fetch for
// a previous selection can never overwrite a newer one.
type Session struct {
	mu            sync.Mutex
	selected      string
	gen           uint64
	draft         string
	conversations []*domain.Conversation
	thread        []*domain.Message

	userID          string
	conversationSvc *ConversationService
	messageSvc      *MessageService
}

func NewSession(userID string, conversations *ConversationService, messages *MessageService) *Session {
	return &Session{
		userID:          userID,
		conversationSvc: conversations,
		messageSvc:      messages,
	}
}

// Refresh recomputes the conversation list from the store. On failure the
// cached list is cleared rather than left stale: an error plus an empty view
// is reported, never an outdated one presented as current.
func (s *Session) Refresh(ctx context.Context) error {
	convs, err := s.conversationSvc.ListForUser(ctx, s.userID)
	s.mu.Lock()
	s.conversations = convs
	s.mu.Unlock()
	return err
}

// Select makes partnerID the active conversation: thread load first, then
// mark-read, then a conversation refresh so the cleared badge always comes
// from actual store state. Results are applied under the generation captured
// at invocation time.
func (s *Session) Select(ctx context.Context, partnerID string) error {
	s.mu.Lock()
	s.selected = partnerID
	s.gen++
	gen := s.gen
	s.thread = nil
	s.mu.Unlock()

	thread, err := s.messageSvc.Thread(ctx, s.userID, partnerID)
	if err == nil {
		s.applyThread(gen, thread)
		_, err = s.conversationSvc.MarkRead(ctx, s.userID, partnerID)
	}

	// Refresh even after a failed mark: the unread counts must reflect
	// whatever actually committed.
	if refreshErr := s.Refresh(ctx); err == nil {
		err = refreshErr
	}
	return err
}

// Send submits the pending draft to the selected partner. The draft is
// cleared only on success; a failed send keeps it so nothing is lost. After
// a successful write both the thread and the conversation list are
// re-fetched from the store.
func (s *Session) Send(ctx context.Context) (*domain.Message, error) {
	s.mu.Lock()
	partnerID := s.selected
	gen := s.gen
	draft := s.draft
	s.mu.Unlock()

	msg, err := s.messageSvc.Send(ctx, SendInput{
		SenderID:   s.userID,
		ReceiverID: partnerID,
		Body:       draft,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.draft = ""
	}
	s.mu.Unlock()

	if thread, threadErr := s.messageSvc.Thread(ctx, s.userID, partnerID); threadErr == nil {
		s.applyThread(gen, thread)
	}
	if refreshErr := s.Refresh(ctx); refreshErr != nil {
		return msg, refreshErr
	}
	return msg, nil
}

// SetDraft replaces the pending message text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// Draft returns the pending message text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Selected returns the active partner ID, or "" when nothing is selected.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Conversations returns the cached conversation list.
func (s *Session) Conversations() []*domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations
}

// Thread returns the cached thread for the active selection.
func (s *Session) Thread() []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thread
}

// applyThread installs a fetched thread unless a newer selection superseded
// the fetch while it was in flight.
func (s *Session) applyThread(gen uint64, thread []*domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.thread = thread
	return true
}
