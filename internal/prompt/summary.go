package prompt

import "strings"

const (
	// DefaultSummaryCap bounds the rolling summary's stored size
	DefaultSummaryCap = 1000

	// responseExcerptLen is how much of the assistant reply is folded in
	responseExcerptLen = 200

	// imagePlaceholder stands in for user text on image-only turns
	imagePlaceholder = "shared an image"
)

// UpdateSummary folds one exchange into the rolling summary and truncates
// the result to its last cap runes. Older content is dropped from the front;
// the persisted message list retains full history.
func UpdateSummary(prev, userText, response string, cap int) string {
	if cap <= 0 {
		cap = DefaultSummaryCap
	}

	user := strings.TrimSpace(userText)
	if user == "" {
		user = imagePlaceholder
	}

	updated := prev + "\nUser: " + user + ". AI: " + Truncate(response, responseExcerptLen)

	runes := []rune(updated)
	if len(runes) > cap {
		runes = runes[len(runes)-cap:]
	}
	return string(runes)
}
