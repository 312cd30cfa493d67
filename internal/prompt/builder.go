// Package prompt builds the bounded context window sent to a provider and
// maintains the rolling conversation summary. Everything here is pure string
// computation with explicit size caps.
package prompt

import (
	"strings"

	"github.com/parley-chat/parley/pkg/types"
)

const (
	generalInstruction = "You are a helpful AI assistant. Provide clear, accurate, and contextually relevant responses."
	visionInstruction  = "You are an AI assistant specialized in analyzing images and providing detailed responses about their content."

	promptTrailer = "Please provide helpful, accurate, and contextually relevant responses. When analyzing images, be detailed and specific about what you observe."

	imageMarker = "[Image was shared in this message]"
)

// Builder assembles system prompts from conversation state
type Builder struct {
	historyWindow   int // most recent messages included
	messageTruncate int // chars of each included message
}

// NewBuilder creates a builder. Non-positive arguments fall back to the
// reference behavior (window 4, 150 chars per message).
func NewBuilder(historyWindow, messageTruncate int) *Builder {
	if historyWindow <= 0 {
		historyWindow = 4
	}
	if messageTruncate <= 0 {
		messageTruncate = 150
	}
	return &Builder{historyWindow: historyWindow, messageTruncate: messageTruncate}
}

// Build assembles the system instruction for one turn. The instruction
// variant follows the current turn's modality, not the conversation's.
// currentMessageID names the already-persisted message for this turn's user
// input so it is not duplicated into the history section. Empty history
// produces no "Recent conversation" heading and an empty summary no context
// block.
func (b *Builder) Build(summary string, history []*types.Message, currentMessageID string, hasImage bool) string {
	var sb strings.Builder

	if hasImage {
		sb.WriteString(visionInstruction)
	} else {
		sb.WriteString(generalInstruction)
	}

	if s := strings.TrimSpace(summary); s != "" {
		sb.WriteString("\n\nConversation context: ")
		sb.WriteString(s)
	}

	lines := b.historyLines(history, currentMessageID)
	if len(lines) > 0 {
		sb.WriteString("\n\nRecent conversation:\n")
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(promptTrailer)

	return sb.String()
}

// historyLines renders the last historyWindow eligible messages, oldest
// first. System messages and the current turn's own message are skipped.
func (b *Builder) historyLines(history []*types.Message, currentMessageID string) []string {
	eligible := make([]*types.Message, 0, len(history))
	for _, msg := range history {
		if msg.Role == types.RoleSystem {
			continue
		}
		if currentMessageID != "" && msg.ID == currentMessageID {
			continue
		}
		eligible = append(eligible, msg)
	}

	if len(eligible) > b.historyWindow {
		eligible = eligible[len(eligible)-b.historyWindow:]
	}

	lines := make([]string, 0, len(eligible))
	for _, msg := range eligible {
		label := "User"
		if msg.Role == types.RoleAssistant {
			label = "Assistant"
		}
		line := label + ": " + Truncate(msg.Content, b.messageTruncate)
		if msg.HasImage() {
			line += "\n" + imageMarker
		}
		lines = append(lines, line)
	}

	return lines
}

// Truncate cuts s to at most n runes, appending "..." when it was cut
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
