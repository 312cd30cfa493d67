// Package chatstore provides persistent storage for conversations and messages
package chatstore

import (
	"context"
	"fmt"

	"github.com/parley-chat/parley/pkg/types"
)

var (
	// ErrConversationNotFound is returned when a conversation does not exist
	// or does not belong to the requesting user.
	ErrConversationNotFound = fmt.Errorf("conversation not found")
)

// Store manages conversation and message persistence
type Store interface {
	// Conversation management

	// CreateConversation creates a new conversation for a user
	CreateConversation(ctx context.Context, userID, title string) (*types.Conversation, error)

	// GetConversation retrieves a conversation by ID, scoped to the owning user.
	// Returns ErrConversationNotFound when the conversation does not exist or
	// belongs to a different user.
	GetConversation(ctx context.Context, conversationID, userID string) (*types.Conversation, error)

	// UpdateContext replaces the rolling summary and bumps last_message_at
	UpdateContext(ctx context.Context, conversationID, summary, userID string) error

	// ListConversations returns the user's conversations ordered by most
	// recent activity, newest first
	ListConversations(ctx context.Context, userID string, limit int) ([]*types.Conversation, error)

	// Messages

	// AddMessage appends a message to a conversation and bumps the owning
	// conversation's last_message_at
	AddMessage(ctx context.Context, conversationID, userID, content string, role types.Role, imageURL string) (*types.Message, error)

	// ListMessages returns a conversation's messages in chronological order
	ListMessages(ctx context.Context, conversationID, userID string, limit int) ([]*types.Message, error)

	// ListRecentMessages returns the conversation's last limit messages,
	// still in chronological order
	ListRecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]*types.Message, error)
}
