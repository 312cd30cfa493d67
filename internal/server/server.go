// Package server exposes the chat engine over HTTP, mirroring the surface
// the rest of the system consumes: one turn endpoint plus conversation and
// message listings.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/parley-chat/parley/internal/chatstore"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/engine"
	"github.com/parley-chat/parley/internal/image"
	"github.com/parley-chat/parley/pkg/types"
)

// userHeader carries the authenticated user identity, injected by the
// auth layer in front of this service. The server trusts it.
const userHeader = "X-User-Id"

// listCacheTTL bounds staleness of the conversation-list cache
const listCacheTTL = 30 * time.Second

// Server is the HTTP front of the chat engine
type Server struct {
	engine *engine.Engine
	store  chatstore.Store
	cfg    *config.Config
	logger *TurnLogger
	lists  *cache.Cache
	mux    *http.ServeMux
}

// New creates a server around the given engine and store
func New(cfg *config.Config, eng *engine.Engine, store chatstore.Store) *Server {
	s := &Server{
		engine: eng,
		store:  store,
		cfg:    cfg,
		logger: NewTurnLogger(),
		lists:  cache.New(listCacheTTL, time.Minute),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/conversations", s.handleListConversations)
	s.mux.HandleFunc("GET /api/conversations/{id}/messages", s.handleListMessages)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the server on the configured address
func (s *Server) ListenAndServe() error {
	log.Printf("listening on %s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.mux)
}

// chatResponse is the wire shape of a turn result
type chatResponse struct {
	Success      bool                `json:"success"`
	Message      *types.Message      `json:"message,omitempty"`
	Conversation *types.Conversation `json:"conversation,omitempty"`
	Warning      string              `json:"warning,omitempty"`
	Error        string              `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	in := &engine.TurnInput{
		ConversationID: r.FormValue("conversationId"),
		UserText:       r.FormValue("message"),
		ImageURL:       r.FormValue("imageUrl"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading image upload")
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		in.ImageData = data
		in.ImageMIME = header.Header.Get("Content-Type")
		in.ImageName = header.Filename
	}

	start := time.Now()
	res, err := s.engine.ProcessTurn(r.Context(), userID, in)
	s.logger.LogTurn(userID, in, res, err, time.Since(start))

	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "message or image is required")
		case errors.Is(err, chatstore.ErrConversationNotFound):
			writeError(w, http.StatusNotFound, "conversation not found")
		case errors.Is(err, image.ErrFetch):
			writeError(w, http.StatusBadRequest, "image could not be fetched")
		default:
			log.Printf("chat turn failed for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	// Turn activity invalidates the cached conversation list
	s.lists.Delete(userID)

	writeJSON(w, http.StatusOK, chatResponse{
		Success:      true,
		Message:      res.Message,
		Conversation: res.Conversation,
		Warning:      res.Warning,
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if cached, ok := s.lists.Get(userID); ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"conversations": cached,
		})
		return
	}

	conversations, err := s.store.ListConversations(r.Context(), userID, 20)
	if err != nil {
		log.Printf("listing conversations for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if conversations == nil {
		conversations = []*types.Conversation{}
	}

	s.lists.SetDefault(userID, conversations)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"conversations": conversations,
	})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := r.PathValue("id")
	if _, err := s.store.GetConversation(r.Context(), conversationID, userID); err != nil {
		if errors.Is(err, chatstore.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		log.Printf("loading conversation %s: %v", conversationID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	messages, err := s.store.ListMessages(r.Context(), conversationID, userID, 50)
	if err != nil {
		log.Printf("listing messages for conversation %s: %v", conversationID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if messages == nil {
		messages = []*types.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": messages,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, chatResponse{Success: false, Error: msg})
}
