package chatstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/pkg/types"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed chat store
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateConversation creates a new conversation for a user
func (s *SQLiteStore) CreateConversation(ctx context.Context, userID, title string) (*types.Conversation, error) {
	now := time.Now().Unix()

	conv := &types.Conversation{
		ID:            generateID("conv"),
		UserID:        userID,
		Title:         title,
		Context:       "",
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, context, created_at, updated_at, last_message_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, conv.ID, conv.UserID, conv.Title, conv.Context, conv.CreatedAt, conv.UpdatedAt, conv.LastMessageAt)

	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	return conv, nil
}

// GetConversation retrieves a conversation by ID, scoped to the owning user
func (s *SQLiteStore) GetConversation(ctx context.Context, conversationID, userID string) (*types.Conversation, error) {
	var conv types.Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, context, created_at, updated_at, last_message_at
		FROM conversations WHERE id = ? AND user_id = ?
	`, conversationID, userID).Scan(
		&conv.ID, &conv.UserID, &conv.Title, &conv.Context,
		&conv.CreatedAt, &conv.UpdatedAt, &conv.LastMessageAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	return &conv, nil
}

// UpdateContext replaces the rolling summary and bumps last_message_at
func (s *SQLiteStore) UpdateContext(ctx context.Context, conversationID, summary, userID string) error {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET context = ?, updated_at = ?, last_message_at = ?
		WHERE id = ? AND user_id = ?
	`, summary, now, now, conversationID, userID)
	if err != nil {
		return fmt.Errorf("updating conversation context: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating conversation context: %w", err)
	}
	if n == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// ListConversations returns the user's conversations, most recent activity first
func (s *SQLiteStore) ListConversations(ctx context.Context, userID string, limit int) ([]*types.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, context, created_at, updated_at, last_message_at
		FROM conversations WHERE user_id = ?
		ORDER BY last_message_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*types.Conversation
	for rows.Next() {
		var conv types.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.UserID, &conv.Title, &conv.Context,
			&conv.CreatedAt, &conv.UpdatedAt, &conv.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		conversations = append(conversations, &conv)
	}

	return conversations, rows.Err()
}

// AddMessage appends a message and bumps the conversation's last_message_at
func (s *SQLiteStore) AddMessage(ctx context.Context, conversationID, userID, content string, role types.Role, imageURL string) (*types.Message, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	now := time.Now().Unix()
	msg := &types.Message{
		ID:             generateID("msg"),
		ConversationID: conversationID,
		UserID:         userID,
		Content:        content,
		Role:           role,
		ImageURL:       imageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}
	defer tx.Rollback()

	var imageVal any
	if imageURL != "" {
		imageVal = imageURL
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, user_id, content, role, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.UserID, msg.Content, msg.Role, imageVal, msg.CreatedAt, msg.UpdatedAt); err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations SET last_message_at = ?, updated_at = ? WHERE id = ?
	`, now, now, conversationID); err != nil {
		return nil, fmt.Errorf("updating conversation activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}

	return msg, nil
}

// ListMessages returns a conversation's messages in chronological order
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID, userID string, limit int) ([]*types.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, user_id, content, role, image_url, created_at, updated_at
		FROM messages WHERE conversation_id = ? AND user_id = ?
		ORDER BY created_at ASC, rowid ASC LIMIT ?
	`, conversationID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []*types.Message
	for rows.Next() {
		var msg types.Message
		var imageURL sql.NullString
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.UserID, &msg.Content,
			&msg.Role, &imageURL, &msg.CreatedAt, &msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.ImageURL = imageURL.String
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// ListRecentMessages returns the conversation's last limit messages, still in
// chronological order. Context assembly uses this so the window tracks the
// tail of a long conversation rather than its head.
func (s *SQLiteStore) ListRecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]*types.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, user_id, content, role, image_url, created_at, updated_at
		FROM messages WHERE conversation_id = ? AND user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, conversationID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent messages: %w", err)
	}
	defer rows.Close()

	var messages []*types.Message
	for rows.Next() {
		var msg types.Message
		var imageURL sql.NullString
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.UserID, &msg.Content,
			&msg.Role, &imageURL, &msg.CreatedAt, &msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.ImageURL = imageURL.String
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func generateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
