package engine

import "strings"

const titleWordLimit = 6

// DeriveTitle builds a conversation title from the first user input: the
// first six words, with an ellipsis when the input was longer
func DeriveTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) == 0 {
		return "New Conversation"
	}

	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}
