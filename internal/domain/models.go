package domain

import "time"

// User represents an application user.
type User struct {
	ID             string    `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          *string   `db:"email" json:"email,omitempty"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsOnline       bool      `db:"is_online" json:"is_online"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
}

// Message is a direct message between two users. Everything is immutable
// after insert except Read, which only ever moves false -> true.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"body"`
	Read       bool      `db:"read" json:"read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Conversation is the per-partner summary derived from a user's messages.
// It is never stored; every listing recomputes it from the message table.
type Conversation struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name"`
	LastMessage string `json:"last_message"`
	UnreadCount int    `json:"unread_count"`
}
