package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListActive(ctx context.Context, offset, limit int) ([]*User, error)
	SetOnlineStatus(ctx context.Context, id string, isOnline bool) error
}

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	// Insert stores a new message. The store assigns ID and CreatedAt;
	// both are populated on m before returning.
	Insert(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	// ListInvolving returns every message sent or received by the user,
	// newest first. Equal timestamps order by descending ID, so the most
	// recently inserted row always comes first.
	ListInvolving(ctx context.Context, userID string) ([]*Message, error)
	// ListThread returns the full history between two users in both
	// directions, oldest first.
	ListThread(ctx context.Context, userA, userB string) ([]*Message, error)
	// MarkRead flips read=false to read=true on every message from
	// senderID to receiverID and reports how many rows changed. Calling
	// it with nothing to mark is a no-op returning zero.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
}
