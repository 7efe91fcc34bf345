package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/parley/internal/chat"
)

// Async result messages. Each gateway call runs as a command and reports back
// with exactly one of these; the update loop applies the result to the store.

// SessionsLoadedMsg carries the result of the initial session list load
type SessionsLoadedMsg struct {
	Sessions []chat.Session
	Err      error
}

// HistoryLoadedMsg carries a session's reloaded message history
type HistoryLoadedMsg struct {
	SessionID string
	Messages  []chat.Message
	Err       error
}

// SessionCreatedMsg carries a freshly created session
type SessionCreatedMsg struct {
	Session chat.Session
	Err     error
}

// SessionDeletedMsg confirms a session deletion
type SessionDeletedMsg struct {
	SessionID string
	Err       error
}

// ExchangeDoneMsg settles a message exchange. The session ID routes the reply
// even when the user has switched sessions in the meantime.
type ExchangeDoneMsg struct {
	SessionID string
	Response  string
	Err       error
}

func (m *Model) loadSessionsCmd() tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		sessions, err := gw.ListSessions(context.Background())
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m *Model) loadHistoryCmd(sessionID string) tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		messages, err := gw.ListMessages(context.Background(), sessionID)
		return HistoryLoadedMsg{SessionID: sessionID, Messages: messages, Err: err}
	}
}

func (m *Model) createSessionCmd(title string) tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		sess, err := gw.CreateSession(context.Background(), title)
		return SessionCreatedMsg{Session: sess, Err: err}
	}
}

func (m *Model) deleteSessionCmd(sessionID string) tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		err := gw.DeleteSession(context.Background(), sessionID)
		return SessionDeletedMsg{SessionID: sessionID, Err: err}
	}
}

func (m *Model) sendMessageCmd(ex chat.Exchange) tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		response, err := gw.SendMessage(context.Background(), ex.SessionID, ex.Content)
		return ExchangeDoneMsg{SessionID: ex.SessionID, Response: response, Err: err}
	}
}
