// Package server is the backend chat service: chat/message persistence plus
// assistant reply generation behind a small REST API. The TUI client talks to
// it through the gateway package; the wire formats here are the contract.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/logger"
)

// Server bundles the store and responder behind the HTTP handlers.
type Server struct {
	store     *Store
	responder Responder
}

// New creates a server over the given store and responder.
func New(store *Store, responder Responder) *Server {
	return &Server{store: store, responder: responder}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Get("/", s.handleRoot)
		api.Post("/chats", s.handleCreateChat)
		api.Get("/chats", s.handleListChats)
		api.Delete("/chats/{chatID}", s.handleDeleteChat)
		api.Get("/chats/{chatID}/messages", s.handleListMessages)
		api.Post("/chats/{chatID}/messages", s.handleSendMessage)
	})

	return r
}

type createChatRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type sendMessageResponse struct {
	Message  *Message `json:"message"`
	Response string   `json:"response"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Parley API is running"})
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	// An empty or absent body means "use the default title"
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Title == "" {
		req.Title = chat.DefaultTitle
	}

	created, err := s.store.CreateChat(r.Context(), req.Title)
	if err != nil {
		logger.Error("Server: create chat failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	respondJSON(w, http.StatusOK, created)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.store.ListChats(r.Context())
	if err != nil {
		logger.Error("Server: list chats failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	if chats == nil {
		chats = []Chat{}
	}
	respondJSON(w, http.StatusOK, chats)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := s.store.DeleteChat(r.Context(), chatID); err != nil {
		logger.Error("Server: delete chat %s failed: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	msgs, err := s.store.ListMessages(r.Context(), chatID)
	if err != nil {
		logger.Error("Server: list messages for %s failed: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

// handleSendMessage is the exchange endpoint: persist the user's message,
// gather the chat history, ask the responder, persist its reply, and return
// both. The user message is persisted even when reply generation fails, so
// history never loses user intent.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetChat(ctx, chatID); err != nil {
		if errors.Is(err, ErrChatNotFound) {
			respondError(w, http.StatusNotFound, "Chat not found")
			return
		}
		logger.Error("Server: lookup chat %s failed: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "failed to look up chat")
		return
	}

	userMsg, err := s.store.InsertMessage(ctx, chatID, "user", req.Content)
	if err != nil {
		logger.Error("Server: persist user message failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	history, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		logger.Error("Server: load history for %s failed: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	reply, err := s.responder.Reply(ctx, history)
	if err != nil {
		logger.Error("Server: reply generation for %s failed: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "AI Error: "+err.Error())
		return
	}

	if _, err := s.store.InsertMessage(ctx, chatID, "assistant", reply); err != nil {
		logger.Error("Server: persist assistant message failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save reply")
		return
	}

	if err := s.store.TouchChat(ctx, chatID); err != nil {
		// Ordering in the chat list degrades, nothing else
		logger.Warn("Server: touch chat %s failed: %v", chatID, err)
	}

	respondJSON(w, http.StatusOK, sendMessageResponse{Message: userMsg, Response: reply})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Server: encoding response failed: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
