// Package types defines core data structures for Parley
package types

// Role represents the role of a message sender
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the role as a string
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Conversation represents a chat conversation owned by a user
type Conversation struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Title  string `json:"title" db:"title"`

	// Context is the rolling conversation summary. It is size-capped and
	// rewritten on every successful turn.
	Context string `json:"context" db:"context"`

	CreatedAt     int64 `json:"created_at" db:"created_at"`
	UpdatedAt     int64 `json:"updated_at" db:"updated_at"`
	LastMessageAt int64 `json:"last_message_at" db:"last_message_at"`
}

// Message represents a single message within a conversation
type Message struct {
	ID             string `json:"id" db:"id"`
	ConversationID string `json:"conversation_id" db:"conversation_id"`
	UserID         string `json:"user_id" db:"user_id"`
	Content        string `json:"content" db:"content"`
	Role           Role   `json:"role" db:"role"`

	// ImageURL points into external object storage when the message
	// carried an image. Empty otherwise.
	ImageURL string `json:"image_url,omitempty" db:"image_url"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// HasImage reports whether the message carried an image
func (m *Message) HasImage() bool {
	return m.ImageURL != ""
}

// TurnResult is the outcome of processing one conversational turn.
// A degraded turn (provider failure absorbed by the fallback path) still
// reports Success == true; Warning is set so callers can surface it.
type TurnResult struct {
	Success      bool          `json:"success"`
	Message      *Message      `json:"message,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
	Warning      string        `json:"warning,omitempty"`
}

// Degraded reports whether the turn used the fallback reply
func (r *TurnResult) Degraded() bool {
	return r.Success && r.Warning != ""
}
