package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/parley/internal/logger"
	"github.com/parleyhq/parley/internal/notification"
)

// handleSessionsLoaded applies the initial session list. A load failure leaves
// the list empty: the app stays usable and the user can create a new chat.
func (m *Model) handleSessionsLoaded(msg SessionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Warn("App: failed to load chats: %v", msg.Err)
		m.store.SetSessions(nil)
		m.sidebar.SetSessions(nil)
		m.syncFooter()
		return m, nil
	}

	logger.Log("App: loaded %d chats", len(msg.Sessions))
	m.store.SetSessions(msg.Sessions)
	m.sidebar.SetSessions(m.store.Sessions())
	m.sidebar.SetActive(m.store.ActiveID())
	m.syncFooter()

	return m, m.restoreLastActive()
}

// handleHistoryLoaded installs a reloaded history. Results for a session that
// is no longer active are discarded; a failed reload shows the session with an
// explanatory note instead of stale messages.
func (m *Model) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Warn("App: failed to load history for %s: %v", msg.SessionID, msg.Err)
		if msg.SessionID == m.store.ActiveID() {
			m.store.ClearLog()
			m.chat.SetLoadError(msg.Err.Error())
		}
		return m, nil
	}

	if !m.store.ApplyHistory(msg.SessionID, msg.Messages) {
		return m, nil
	}

	m.chat.SetMessages(m.store.Messages())
	return m, m.resumePendingTicks()
}

// handleSessionCreated prepends the new chat, makes it active, and moves focus
// into the (empty) conversation.
func (m *Model) handleSessionCreated(msg SessionCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Warn("App: failed to create chat: %v", msg.Err)
		return m, nil
	}

	logger.Log("App: created chat %s (%q)", msg.Session.ID, msg.Session.Title)
	m.store.AddSession(msg.Session)
	m.sidebar.SetSessions(m.store.Sessions())
	m.sidebar.SetActive(msg.Session.ID)
	m.sidebar.SelectSession(msg.Session.ID)

	m.chat.SetSession(msg.Session.Title, nil)
	m.chat.ClearInput()
	m.setFocus(FocusChat)
	m.syncHeader()
	m.syncFooter()

	m.config.SetLastActiveChatID(msg.Session.ID)
	if err := m.config.Save(); err != nil {
		logger.Warn("App: failed to save config: %v", err)
	}

	return m, nil
}

// handleSessionDeleted removes the chat locally after the backend confirmed.
// Deleting the active chat falls back to the newest remaining one.
func (m *Model) handleSessionDeleted(msg SessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Warn("App: failed to delete chat %s: %v", msg.SessionID, msg.Err)
		return m, nil
	}

	logger.Log("App: deleted chat %s", msg.SessionID)
	newActive, activeChanged := m.store.RemoveSession(msg.SessionID)
	m.sidebar.SetSessions(m.store.Sessions())
	m.sidebar.SetBusy(msg.SessionID, false)

	if !activeChanged {
		m.syncFooter()
		return m, nil
	}

	var cmd tea.Cmd
	if newActive == "" {
		m.sidebar.SetActive("")
		m.chat.ClearSession()
		m.setFocus(FocusSidebar)
		m.config.SetLastActiveChatID("")
	} else {
		active := m.store.Active()
		m.sidebar.SetActive(newActive)
		m.sidebar.SelectSession(newActive)
		m.chat.SetSession(active.Title, nil)
		m.config.SetLastActiveChatID(newActive)
		cmd = m.loadHistoryCmd(newActive)
	}

	if err := m.config.Save(); err != nil {
		logger.Warn("App: failed to save config: %v", err)
	}

	m.syncHeader()
	m.syncFooter()
	return m, cmd
}

// handleExchangeDone settles an exchange. Replies for a session the user has
// since switched away from are discarded locally; the backend keeps the
// durable copy and the next history reload picks it up.
func (m *Model) handleExchangeDone(msg ExchangeDoneMsg) (tea.Model, tea.Cmd) {
	m.sidebar.SetBusy(msg.SessionID, false)

	if msg.Err != nil {
		logger.Warn("App: exchange failed for %s: %v", msg.SessionID, msg.Err)
		m.store.FailExchange(msg.SessionID)
	} else {
		m.store.ResolveExchange(msg.SessionID, msg.Response)
	}

	if msg.SessionID == m.store.ActiveID() {
		m.chat.SetWaiting(false)
		m.chat.SetMessages(m.store.Messages())
	}

	if !m.windowFocused && m.config.GetNotificationsEnabled() {
		title := m.activeSessionTitle()
		for _, sess := range m.store.Sessions() {
			if sess.ID == msg.SessionID {
				title = sess.Title
				break
			}
		}
		go notification.ReplyReceived(title)
	}

	m.syncFooter()
	return m, nil
}
