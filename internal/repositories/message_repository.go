package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tripboard/internal/models"
	"tripboard/internal/state"
)

// MessageRepository abstracts chat-message persistence.
type MessageRepository interface {
	ListMessages(ctx context.Context, groupID string, cursor state.Cursor, limit int) ([]models.ChatMessage, bool, error)
	CreateMessage(ctx context.Context, groupID, senderID, content string) (models.ChatMessage, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// ListMessages returns one backward page of a group's chat. Rows are fetched
// newest-first with the limit+1 trim, then reversed so the page itself reads
// chronologically; the cursor keeps walking toward older history.
func (r *MessageRepo) ListMessages(ctx context.Context, groupID string, cursor state.Cursor, limit int) ([]models.ChatMessage, bool, error) {
	limit = clampLimit(limit)

	var messages []models.ChatMessage
	var err error
	if cursor.ID == "" {
		query := `SELECT id, group_id, sender_id, content, created_at FROM chat_messages
            WHERE group_id=$1
            ORDER BY created_at DESC, id DESC LIMIT $2`
		err = r.db.SelectContext(ctx, &messages, query, groupID, limit+1)
	} else {
		query := `SELECT id, group_id, sender_id, content, created_at FROM chat_messages
            WHERE group_id=$1 AND (created_at, id) < ($2, $3::uuid)
            ORDER BY created_at DESC, id DESC LIMIT $4`
		err = r.db.SelectContext(ctx, &messages, query, groupID, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, hasMore, nil
}

// CreateMessage stores a chat message.
func (r *MessageRepo) CreateMessage(ctx context.Context, groupID, senderID, content string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO chat_messages (group_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, group_id, sender_id, content, created_at`, groupID, senderID, content)
	return msg, err
}
