package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dmchat/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO private_messages (sender_id, receiver_id, body, read, created_at)
		VALUES ($1, $2, $3, FALSE, now())
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, m.SenderID, m.ReceiverID, m.Body).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.Read = false
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, read, created_at
		FROM private_messages
		WHERE id = $1
	`
	m := &domain.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Body,
		&m.Read,
		&m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) ListInvolving(ctx context.Context, userID string) ([]*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, read, created_at
		FROM private_messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, userID)
}

func (r *MessageRepo) ListThread(ctx context.Context, userA, userB string) ([]*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, read, created_at
		FROM private_messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, query, userA, userB)
}

func (r *MessageRepo) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE private_messages
		SET read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND read = FALSE
	`, receiverID, senderID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *MessageRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Body,
			&m.Read,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return res, nil
}
