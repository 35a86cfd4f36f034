package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dmchat/internal/domain"
	"dmchat/internal/service"
)

func newMsg(id int64, sender, receiver, body string, read bool, at time.Time) *domain.Message {
	return &domain.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
		Read:       read,
		CreatedAt:  at,
	}
}

func TestListForUser(t *testing.T) {
	now := time.Now()

	t.Run("GroupsByPartner", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		// Newest first, as the store delivers them.
		messages.On("ListInvolving", mock.Anything, "u1").Return([]*domain.Message{
			newMsg(5, "p2", "u1", "hey", false, now),
			newMsg(4, "u1", "p1", "talk later", false, now.Add(-1*time.Minute)),
			newMsg(3, "p1", "u1", "are you there?", false, now.Add(-2*time.Minute)),
			newMsg(2, "p1", "u1", "hello", false, now.Add(-3*time.Minute)),
			newMsg(1, "u1", "p3", "yo", false, now.Add(-4*time.Minute)),
		}, nil)
		users.On("GetByID", mock.Anything, "p1").Return(&domain.User{ID: "p1", Username: "alice"}, nil)
		users.On("GetByID", mock.Anything, "p2").Return(&domain.User{ID: "p2", Username: "bob"}, nil)
		users.On("GetByID", mock.Anything, "p3").Return(nil, nil)

		convs, err := svc.ListForUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Len(t, convs, 3)

		// Partners ordered by recency of their latest message.
		assert.Equal(t, "p2", convs[0].PartnerID)
		assert.Equal(t, "p1", convs[1].PartnerID)
		assert.Equal(t, "p3", convs[2].PartnerID)

		// Last message is the newest one regardless of direction.
		assert.Equal(t, "hey", convs[0].LastMessage)
		assert.Equal(t, "talk later", convs[1].LastMessage)
		assert.Equal(t, "yo", convs[2].LastMessage)

		// Unread counts only incoming unread messages. The outgoing
		// message to p3 is unread for p3, not for u1.
		assert.Equal(t, 1, convs[0].UnreadCount)
		assert.Equal(t, 2, convs[1].UnreadCount)
		assert.Equal(t, 0, convs[2].UnreadCount)

		// Display names come from profiles, falling back to the raw ID.
		assert.Equal(t, "bob", convs[0].PartnerName)
		assert.Equal(t, "alice", convs[1].PartnerName)
		assert.Equal(t, "p3", convs[2].PartnerName)
	})

	t.Run("NoMessages", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("ListInvolving", mock.Anything, "u1").Return(nil, nil)

		convs, err := svc.ListForUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Empty(t, convs)
	})

	t.Run("StoreError", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("ListInvolving", mock.Anything, "u1").Return(nil, errors.New("connection refused"))

		convs, err := svc.ListForUser(context.Background(), "u1")
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Nil(t, convs)
	})

	t.Run("NoCurrentUser", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		_, err := svc.ListForUser(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		messages.AssertNotCalled(t, "ListInvolving")
	})

	t.Run("ZeroUnreadPartnerStillAppears", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("ListInvolving", mock.Anything, "u1").Return([]*domain.Message{
			newMsg(1, "p1", "u1", "old news", true, now),
		}, nil)
		users.On("GetByID", mock.Anything, "p1").Return(&domain.User{ID: "p1", Username: "alice"}, nil)

		convs, err := svc.ListForUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Len(t, convs, 1)
		assert.Equal(t, 0, convs[0].UnreadCount)
	})
}

func TestMarkRead(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("MarkRead", mock.Anything, "u1", "p1").Return(int64(2), nil).Once()
		messages.On("MarkRead", mock.Anything, "u1", "p1").Return(int64(0), nil).Once()

		n, err := svc.MarkRead(context.Background(), "u1", "p1")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = svc.MarkRead(context.Background(), "u1", "p1")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("NoPartnerSelected", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		_, err := svc.MarkRead(context.Background(), "u1", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
		messages.AssertNotCalled(t, "MarkRead")
	})

	t.Run("WriteFailure", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("MarkRead", mock.Anything, "u1", "p1").Return(int64(0), errors.New("locked"))

		_, err := svc.MarkRead(context.Background(), "u1", "p1")
		assert.ErrorIs(t, err, domain.ErrWriteRejected)
	})
}

func TestOpen(t *testing.T) {
	now := time.Now()

	t.Run("ThreadThenMarkThenRefresh", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		var calls []string
		track := func(name string) func(mock.Arguments) {
			return func(mock.Arguments) { calls = append(calls, name) }
		}

		thread := []*domain.Message{
			newMsg(1, "p1", "u1", "hello", false, now.Add(-2*time.Minute)),
			newMsg(2, "p1", "u1", "are you there?", false, now.Add(-1*time.Minute)),
		}
		messages.On("ListThread", mock.Anything, "u1", "p1").Run(track("thread")).Return(thread, nil)
		messages.On("MarkRead", mock.Anything, "u1", "p1").Run(track("mark")).Return(int64(2), nil)
		// After the mark the store reports both messages read.
		messages.On("ListInvolving", mock.Anything, "u1").Run(track("aggregate")).Return([]*domain.Message{
			newMsg(2, "p1", "u1", "are you there?", true, now.Add(-1*time.Minute)),
			newMsg(1, "p1", "u1", "hello", true, now.Add(-2*time.Minute)),
		}, nil)
		users.On("GetByID", mock.Anything, "p1").Return(&domain.User{ID: "p1", Username: "alice"}, nil)

		view, err := svc.Open(context.Background(), "u1", "p1")
		assert.NoError(t, err)
		assert.Equal(t, []string{"thread", "mark", "aggregate"}, calls)
		assert.Equal(t, thread, view.Thread)
		assert.Equal(t, int64(2), view.MarkedRead)
		assert.Len(t, view.Conversations, 1)
		assert.Equal(t, 0, view.Conversations[0].UnreadCount)
	})

	t.Run("MarkFailureStillReflectsStore", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("ListThread", mock.Anything, "u1", "p1").Return([]*domain.Message{
			newMsg(1, "p1", "u1", "hello", false, now),
		}, nil)
		messages.On("MarkRead", mock.Anything, "u1", "p1").Return(int64(0), errors.New("locked"))
		messages.On("ListInvolving", mock.Anything, "u1").Return([]*domain.Message{
			newMsg(1, "p1", "u1", "hello", false, now),
		}, nil)
		users.On("GetByID", mock.Anything, "p1").Return(&domain.User{ID: "p1", Username: "alice"}, nil)

		view, err := svc.Open(context.Background(), "u1", "p1")
		assert.ErrorIs(t, err, domain.ErrWriteRejected)
		// The badge still comes from the store, not from the attempted mark.
		messages.AssertCalled(t, "ListInvolving", mock.Anything, "u1")
		assert.Equal(t, 1, view.Conversations[0].UnreadCount)
	})

	t.Run("ThreadFetchFailure", func(t *testing.T) {
		messages := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewConversationService(messages, users)

		messages.On("ListThread", mock.Anything, "u1", "p1").Return(nil, errors.New("connection refused"))

		view, err := svc.Open(context.Background(), "u1", "p1")
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Nil(t, view)
		// No thread shown means no read transition is issued.
		messages.AssertNotCalled(t, "MarkRead")
	})
}
