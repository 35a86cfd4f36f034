package sqlite

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
		VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
	`
	res, err := r.db.ExecContext(ctx, query, m.SenderID, m.ReceiverID, m.Body)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	// Read the row back so the caller sees the store-assigned timestamp.
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("reload message: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("reload message: row %d vanished", id)
	}
	*m = *stored
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, read, created_at
		FROM private_messages
		WHERE id = ?
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
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, userID, userID)
}

func (r *MessageRepo) ListThread(ctx context.Context, userA, userB string) ([]*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, read, created_at
		FROM private_messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, query, userA, userB, userB, userA)
}

func (r *MessageRepo) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE private_messages
		SET read = 1
		WHERE receiver_id = ? AND sender_id = ? AND read = 0
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
