package prompt

import (
	"strings"
	"testing"

	"github.com/parley-chat/parley/pkg/types"
)

func msg(id string, role types.Role, content, imageURL string) *types.Message {
	return &types.Message{ID: id, Role: role, Content: content, ImageURL: imageURL}
}

func TestBuildEmptyHistory(t *testing.T) {
	b := NewBuilder(4, 150)

	got := b.Build("", nil, "", false)

	if !strings.HasPrefix(got, generalInstruction) {
		t.Error("prompt should start with the general instruction")
	}
	if strings.Contains(got, "Recent conversation") {
		t.Error("empty history must not emit a Recent conversation heading")
	}
	if strings.Contains(got, "Conversation context") {
		t.Error("empty summary must not emit a context block")
	}
	if !strings.Contains(got, promptTrailer) {
		t.Error("prompt should end with the trailer")
	}
}

func TestBuildInstructionVariantPerTurn(t *testing.T) {
	b := NewBuilder(4, 150)

	if got := b.Build("", nil, "", true); !strings.HasPrefix(got, visionInstruction) {
		t.Error("image turn should use the image-analysis instruction")
	}
	if got := b.Build("", nil, "", false); !strings.HasPrefix(got, generalInstruction) {
		t.Error("text turn should use the general instruction")
	}
}

func TestBuildIncludesSummary(t *testing.T) {
	b := NewBuilder(4, 150)

	got := b.Build("User: hi. AI: hello...", nil, "", false)
	if !strings.Contains(got, "Conversation context: User: hi. AI: hello...") {
		t.Errorf("prompt missing summary block:\n%s", got)
	}
}

func TestBuildHistoryWindow(t *testing.T) {
	b := NewBuilder(4, 150)

	history := []*types.Message{
		msg("m1", types.RoleUser, "one", ""),
		msg("m2", types.RoleAssistant, "two", ""),
		msg("m3", types.RoleUser, "three", ""),
		msg("m4", types.RoleAssistant, "four", ""),
		msg("m5", types.RoleUser, "five", ""),
		msg("m6", types.RoleAssistant, "six", ""),
	}

	got := b.Build("", history, "", false)

	if !strings.Contains(got, "Recent conversation:") {
		t.Fatalf("prompt missing history heading:\n%s", got)
	}
	// Only the last 4 survive
	for _, absent := range []string{"User: one", "Assistant: two"} {
		if strings.Contains(got, absent) {
			t.Errorf("prompt should not contain %q", absent)
		}
	}
	for _, present := range []string{"User: three", "Assistant: four", "User: five", "Assistant: six"} {
		if !strings.Contains(got, present) {
			t.Errorf("prompt should contain %q", present)
		}
	}
	// Chronological order preserved
	if strings.Index(got, "User: three") > strings.Index(got, "Assistant: six") {
		t.Error("history lines out of chronological order")
	}
}

func TestBuildExcludesSystemAndCurrentMessage(t *testing.T) {
	b := NewBuilder(4, 150)

	history := []*types.Message{
		msg("m1", types.RoleSystem, "internal system note", ""),
		msg("m2", types.RoleUser, "earlier question", ""),
		msg("m3", types.RoleUser, "current question", ""),
	}

	got := b.Build("", history, "m3", false)

	if strings.Contains(got, "internal system note") {
		t.Error("system messages must be excluded")
	}
	if strings.Contains(got, "current question") {
		t.Error("the current turn's message must be excluded")
	}
	if !strings.Contains(got, "earlier question") {
		t.Error("earlier messages should be included")
	}
}

func TestBuildTruncatesMessages(t *testing.T) {
	b := NewBuilder(4, 10)

	history := []*types.Message{
		msg("m1", types.RoleUser, "this message is much longer than ten characters", ""),
	}

	got := b.Build("", history, "", false)
	if !strings.Contains(got, "User: this messa...") {
		t.Errorf("long message not truncated to 10 runes:\n%s", got)
	}
}

func TestBuildImageMarker(t *testing.T) {
	b := NewBuilder(4, 150)

	history := []*types.Message{
		msg("m1", types.RoleUser, "look at this", "https://store/cat.jpg"),
		msg("m2", types.RoleAssistant, "a cat", ""),
	}

	got := b.Build("", history, "", false)
	if !strings.Contains(got, imageMarker) {
		t.Errorf("prompt missing image marker:\n%s", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is longer", 7, "this is..."},
		{"héllo wörld", 5, "héllo..."}, // rune-aware
		{"", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q; want %q", tt.in, tt.n, got, tt.expected)
			}
		})
	}
}
