package server

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/parley-chat/parley/internal/engine"
	"github.com/parley-chat/parley/pkg/types"
)

// TurnLogger writes one JSON line per processed turn
type TurnLogger struct {
	file *os.File
	mu   sync.Mutex
}

// turnLogEntry is the logged shape of one turn
type turnLogEntry struct {
	Timestamp      time.Time     `json:"timestamp"`
	UserID         string        `json:"user_id"`
	ConversationID string        `json:"conversation_id,omitempty"`
	HasImage       bool          `json:"has_image"`
	TextLen        int           `json:"text_len"`
	Degraded       bool          `json:"degraded"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}

// NewTurnLogger creates a turn logger. Set PARLEY_LOG_FILE to also append
// entries to a file.
func NewTurnLogger() *TurnLogger {
	tl := &TurnLogger{}

	if logPath := os.Getenv("PARLEY_LOG_FILE"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			tl.file = f
			log.Printf("Logging turns to file: %s", logPath)
		}
	}

	return tl
}

// LogTurn records the outcome of one turn
func (l *TurnLogger) LogTurn(userID string, in *engine.TurnInput, res *types.TurnResult, err error, duration time.Duration) {
	entry := turnLogEntry{
		Timestamp:      time.Now(),
		UserID:         userID,
		ConversationID: in.ConversationID,
		HasImage:       len(in.ImageData) > 0 || in.ImageURL != "",
		TextLen:        len(in.UserText),
		Duration:       duration,
	}
	if res != nil {
		entry.Degraded = res.Degraded()
		if res.Conversation != nil {
			entry.ConversationID = res.Conversation.ID
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, jerr := json.Marshal(entry)
	if jerr != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Write(append(data, '\n'))
	} else {
		log.Printf("turn: %s", data)
	}
}

// Close closes the log file if one is open
func (l *TurnLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
