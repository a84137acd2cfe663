package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	room TEXT NOT NULL,
	sender_id TEXT NULL REFERENCES users(id),
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

const createMessagesRoomIndex = `
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, created_at);
`

const defaultHistoryLimit = 100

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createMessagesRoomIndex); err != nil {
		return fmt.Errorf("create messages room index: %w", err)
	}
	return nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var sender any
	if msg.SenderID != nil {
		sender = *msg.SenderID
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO messages (id, room, sender_id, content, created_at)
VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.Room,
		sender,
		msg.Content,
		msg.CreatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByRoom(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	// newest window of the log, returned oldest first
	rows, err := r.db.QueryContext(ctx, `
SELECT id, room, sender_id, content, created_at
FROM (
	SELECT id, room, sender_id, content, created_at
	FROM messages
	WHERE room = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?
)
ORDER BY created_at ASC, id ASC`,
		room, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var (
			msg    domain.Message
			sender sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.Room, &sender, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if sender.Valid {
			msg.SenderID = &sender.String
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
