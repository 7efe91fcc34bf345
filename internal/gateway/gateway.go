// Package gateway is the thin request/response client for the backend chat
// service. It holds no state beyond the connection settings; every call is a
// single HTTP round trip. All failures surface as KindNetwork errors — the
// client does not distinguish timeouts from rejections.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/parleyhq/parley/internal/chat"
	perrors "github.com/parleyhq/parley/internal/errors"
	"github.com/parleyhq/parley/internal/logger"
)

// Gateway is the interface the application shell talks to. The HTTP client
// below is the real implementation; tests substitute fakes.
type Gateway interface {
	ListSessions(ctx context.Context) ([]chat.Session, error)
	CreateSession(ctx context.Context, title string) (chat.Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	SendMessage(ctx context.Context, sessionID, content string) (string, error)
}

// DefaultTimeout bounds a single round trip. Send carries the assistant's
// generation time, so it gets a much longer budget than the CRUD calls.
const (
	DefaultTimeout = 15 * time.Second
	SendTimeout    = 2 * time.Minute
)

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL string
	http    *http.Client
	sendc   *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client for the backend at baseURL
// (e.g. "http://localhost:8617").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		sendc:   &http.Client{Timeout: SendTimeout},
	}
}

// Wire types mirror the backend's JSON exactly.

type messageJSON struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type createChatRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}

type sendMessageResponse struct {
	Message  messageJSON `json:"message"`
	Response string      `json:"response"`
}

// ListSessions fetches all chat sessions, ordered most recently updated first.
func (c *Client) ListSessions(ctx context.Context) ([]chat.Session, error) {
	const op = "gateway.ListSessions"
	var sessions []chat.Session
	if err := c.doJSON(ctx, c.http, op, http.MethodGet, "/api/chats", nil, &sessions); err != nil {
		return nil, err
	}
	logger.Log("Gateway: listed %d sessions", len(sessions))
	return sessions, nil
}

// CreateSession persists a new chat session with the given title.
func (c *Client) CreateSession(ctx context.Context, title string) (chat.Session, error) {
	const op = "gateway.CreateSession"
	var sess chat.Session
	if err := c.doJSON(ctx, c.http, op, http.MethodPost, "/api/chats", createChatRequest{Title: title}, &sess); err != nil {
		return chat.Session{}, err
	}
	logger.Info("Gateway: created session %s (%q)", sess.ID, sess.Title)
	return sess, nil
}

// DeleteSession removes a chat session and all its messages.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	const op = "gateway.DeleteSession"
	path := "/api/chats/" + url.PathEscape(id)
	if err := c.doJSON(ctx, c.http, op, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	logger.Info("Gateway: deleted session %s", id)
	return nil
}

// ListMessages fetches a session's full history, oldest first.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	const op = "gateway.ListMessages"
	path := "/api/chats/" + url.PathEscape(sessionID) + "/messages"
	var wire []messageJSON
	if err := c.doJSON(ctx, c.http, op, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	messages := make([]chat.Message, len(wire))
	for i, m := range wire {
		messages[i] = chat.Message{
			Role:      chat.Role(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}
	logger.Log("Gateway: loaded %d messages for session %s", len(messages), sessionID)
	return messages, nil
}

// SendMessage submits a user message and returns the assistant's reply text.
// Exactly one call per exchange; the backend persists both sides.
func (c *Client) SendMessage(ctx context.Context, sessionID, content string) (string, error) {
	const op = "gateway.SendMessage"
	path := "/api/chats/" + url.PathEscape(sessionID) + "/messages"
	var resp sendMessageResponse
	req := sendMessageRequest{ChatID: sessionID, Content: content}
	if err := c.doJSON(ctx, c.sendc, op, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// doJSON performs one JSON round trip. A nil out discards the response body.
func (c *Client) doJSON(ctx context.Context, hc *http.Client, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return perrors.E(perrors.Op(op), perrors.KindInvalid, "encoding request", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return perrors.E(perrors.Op(op), perrors.KindInvalid, "building request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		logger.Warn("Gateway: %s %s failed after %v: %v", method, path, time.Since(start), err)
		return perrors.GatewayUnreachable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		logger.Warn("Gateway: %s %s returned %d after %v", method, path, resp.StatusCode, time.Since(start))
		return perrors.GatewayStatus(op, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perrors.GatewayDecode(op, fmt.Errorf("decoding %s response: %w", path, err))
	}
	return nil
}
