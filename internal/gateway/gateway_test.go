package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/chat"
	perrors "github.com/parleyhq/parley/internal/errors"
)

func TestListSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/chats" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "c1", "title": "First", "created_at": time.Now(), "updated_at": time.Now()},
			{"id": "c2", "title": "Second", "created_at": time.Now(), "updated_at": time.Now()},
		})
	}))
	defer srv.Close()

	sessions, err := NewClient(srv.URL).ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "c1" || sessions[0].Title != "First" {
		t.Errorf("sessions[0] = %+v", sessions[0])
	}
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chats" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req createChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Title != "My Chat" {
			t.Errorf("title = %q, want %q", req.Title, "My Chat")
		}
		json.NewEncoder(w).Encode(chat.Session{ID: "new-id", Title: req.Title})
	}))
	defer srv.Close()

	sess, err := NewClient(srv.URL).CreateSession(context.Background(), "My Chat")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID != "new-id" || sess.Title != "My Chat" {
		t.Errorf("session = %+v", sess)
	}
}

func TestDeleteSession(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).DeleteSession(context.Background(), "c1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if gotPath != "DELETE /api/chats/c1" {
		t.Errorf("request = %q", gotPath)
	}
}

func TestListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]messageJSON{
			{ID: "m1", ChatID: "c1", Role: "user", Content: "hi", Timestamp: time.Now()},
			{ID: "m2", ChatID: "c1", Role: "assistant", Content: "hello", Timestamp: time.Now()},
		})
	}))
	defer srv.Close()

	messages, err := NewClient(srv.URL).ListMessages(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != chat.RoleUser || messages[1].Role != chat.RoleAssistant {
		t.Errorf("roles = [%s %s], want [user assistant]", messages[0].Role, messages[1].Role)
	}
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Content != "ping" {
			t.Errorf("content = %q, want %q", req.Content, "ping")
		}
		json.NewEncoder(w).Encode(sendMessageResponse{
			Message:  messageJSON{ID: "m1", ChatID: "c1", Role: "user", Content: req.Content},
			Response: "pong",
		})
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL).SendMessage(context.Background(), "c1", "ping")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply != "pong" {
		t.Errorf("reply = %q, want %q", reply, "pong")
	}
}

func TestErrorKinds(t *testing.T) {
	t.Run("non-2xx status is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"Chat not found"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).ListMessages(context.Background(), "missing")
		if err == nil {
			t.Fatal("want error for 404 response")
		}
		if kind := perrors.GetKind(err); kind != perrors.KindNetwork {
			t.Errorf("kind = %v, want KindNetwork", kind)
		}
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		// Closed immediately so the port refuses connections
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := NewClient(srv.URL).ListSessions(context.Background())
		if err == nil {
			t.Fatal("want error for unreachable server")
		}
		if kind := perrors.GetKind(err); kind != perrors.KindNetwork {
			t.Errorf("kind = %v, want KindNetwork", kind)
		}
	})

	t.Run("malformed body is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).ListSessions(context.Background())
		if err == nil {
			t.Fatal("want error for malformed body")
		}
		if kind := perrors.GetKind(err); kind != perrors.KindNetwork {
			t.Errorf("kind = %v, want KindNetwork", kind)
		}
	})
}
