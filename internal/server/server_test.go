package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// scriptedResponder returns a fixed reply or error.
type scriptedResponder struct {
	reply string
	err   error
}

func (r scriptedResponder) Reply(ctx context.Context, history []Message) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

func newTestServer(t *testing.T, responder Responder) (*httptest.Server, *Store) {
	t.Helper()
	store := newTestStore(t)
	srv := httptest.NewServer(New(store, responder).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestRootEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, scriptedResponder{reply: "ok"})

	resp, err := http.Get(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("GET /api/: %v", err)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] != "Parley API is running" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestCreateChatEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, scriptedResponder{reply: "ok"})

	t.Run("with title", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/chats", map[string]string{"title": "Planning"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		created := decode[Chat](t, resp)
		if created.Title != "Planning" || created.ID == "" {
			t.Errorf("created = %+v", created)
		}
	})

	t.Run("empty title gets the default", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/chats", map[string]string{})
		created := decode[Chat](t, resp)
		if created.Title != "New Chat" {
			t.Errorf("title = %q, want %q", created.Title, "New Chat")
		}
	})
}

func TestListChatsEndpoint(t *testing.T) {
	srv, store := newTestServer(t, scriptedResponder{reply: "ok"})
	ctx := context.Background()

	if _, err := store.CreateChat(ctx, "A"); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if _, err := store.CreateChat(ctx, "B"); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/chats")
	if err != nil {
		t.Fatalf("GET /api/chats: %v", err)
	}
	chats := decode[[]Chat](t, resp)
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
}

func TestDeleteChatEndpoint(t *testing.T) {
	srv, store := newTestServer(t, scriptedResponder{reply: "ok"})
	ctx := context.Background()

	c, err := store.CreateChat(ctx, "Doomed")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/chats/"+c.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "deleted" {
		t.Errorf("status = %q, want %q", body["status"], "deleted")
	}

	if _, err := store.GetChat(ctx, c.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("chat still present after delete: %v", err)
	}
}

func TestSendMessageEndpoint(t *testing.T) {
	t.Run("success persists both sides", func(t *testing.T) {
		srv, store := newTestServer(t, scriptedResponder{reply: "the answer"})
		ctx := context.Background()

		c, err := store.CreateChat(ctx, "Q&A")
		if err != nil {
			t.Fatalf("CreateChat: %v", err)
		}

		resp := postJSON(t, srv.URL+"/api/chats/"+c.ID+"/messages", map[string]string{"content": "the question"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		body := decode[sendMessageResponse](t, resp)
		if body.Response != "the answer" {
			t.Errorf("response = %q", body.Response)
		}
		if body.Message == nil || body.Message.Role != "user" || body.Message.Content != "the question" {
			t.Errorf("message = %+v, want the persisted user message", body.Message)
		}

		msgs, err := store.ListMessages(ctx, c.ID)
		if err != nil {
			t.Fatalf("ListMessages: %v", err)
		}
		if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
			t.Errorf("persisted %d messages (%+v), want user then assistant", len(msgs), msgs)
		}
	})

	t.Run("unknown chat is 404", func(t *testing.T) {
		srv, _ := newTestServer(t, scriptedResponder{reply: "ok"})

		resp := postJSON(t, srv.URL+"/api/chats/missing/messages", map[string]string{"content": "hello"})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
		body := decode[map[string]string](t, resp)
		if body["detail"] != "Chat not found" {
			t.Errorf("detail = %q", body["detail"])
		}
	})

	t.Run("responder failure is 500 and keeps the user message", func(t *testing.T) {
		srv, store := newTestServer(t, scriptedResponder{err: fmt.Errorf("model overloaded")})
		ctx := context.Background()

		c, err := store.CreateChat(ctx, "Flaky")
		if err != nil {
			t.Fatalf("CreateChat: %v", err)
		}

		resp := postJSON(t, srv.URL+"/api/chats/"+c.ID+"/messages", map[string]string{"content": "hello"})
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", resp.StatusCode)
		}
		body := decode[map[string]string](t, resp)
		if body["detail"] != "AI Error: model overloaded" {
			t.Errorf("detail = %q", body["detail"])
		}

		// The user's message survives the failed generation
		msgs, err := store.ListMessages(ctx, c.ID)
		if err != nil {
			t.Fatalf("ListMessages: %v", err)
		}
		if len(msgs) != 1 || msgs[0].Role != "user" {
			t.Errorf("persisted %d messages (%+v), want just the user message", len(msgs), msgs)
		}
	})

	t.Run("missing content is 400", func(t *testing.T) {
		srv, store := newTestServer(t, scriptedResponder{reply: "ok"})

		c, err := store.CreateChat(context.Background(), "Empty")
		if err != nil {
			t.Fatalf("CreateChat: %v", err)
		}

		resp := postJSON(t, srv.URL+"/api/chats/"+c.ID+"/messages", map[string]string{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestEchoResponder(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "older"},
		{Role: "user", Content: "latest"},
	}
	reply, err := EchoResponder{}.Reply(context.Background(), history)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply")
	}
	if want := `"latest"`; !bytes.Contains([]byte(reply), []byte(want)) {
		t.Errorf("reply %q does not quote the latest user message", reply)
	}
}
