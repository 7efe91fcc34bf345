package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/keys"
	"github.com/parleyhq/parley/internal/logger"
	"github.com/parleyhq/parley/internal/ui"
)

// Update handles messages. This is the core Bubble Tea update function that
// routes all messages to appropriate handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()

	case tea.FocusMsg:
		m.windowFocused = true
		logger.Debug("App: window focused")

	case tea.BlurMsg:
		m.windowFocused = false
		logger.Debug("App: window blurred")

	case tea.KeyPressMsg:
		if model, cmd := m.handleKeyPress(msg); model != nil {
			return model, cmd
		}
		// Key not handled here, fall through to the focused panel

	case SessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case SessionCreatedMsg:
		return m.handleSessionCreated(msg)

	case SessionDeletedMsg:
		return m.handleSessionDeleted(msg)

	case ExchangeDoneMsg:
		return m.handleExchangeDone(msg)

	case ui.SidebarTickMsg:
		if m.sidebar.HasBusy() {
			m.sidebar.AdvanceSpinner()
			return m, ui.SidebarTick()
		}
		m.sidebarTicking = false
		return m, nil
	}

	// The stopwatch tick drives the waiting display regardless of focus
	if _, ok := msg.(ui.StopwatchTickMsg); ok {
		chatPanel, cmd := m.chat.Update(msg)
		m.chat = chatPanel
		return m, cmd
	}

	if m.focus == FocusSidebar {
		sidebar, cmd := m.sidebar.Update(msg)
		m.sidebar = sidebar
		cmds = append(cmds, cmd)
	} else {
		chatPanel, cmd := m.chat.Update(msg)
		m.chat = chatPanel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles all keyboard input. Returns (model, cmd) if the key
// was handled, or (nil, nil) if it should fall through to the focused panel.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == keys.CtrlC {
		return m, tea.Quit
	}

	// The title prompt captures all input while open
	if m.titlePrompt {
		return m.handleTitlePromptKey(msg)
	}

	// An armed delete confirmation captures y/n/esc and swallows the rest
	if m.confirmDeleteID != "" {
		return m.handleConfirmDeleteKey(key)
	}

	switch key {
	case keys.Tab:
		if m.store.ActiveID() != "" {
			if m.focus == FocusSidebar {
				m.setFocus(FocusChat)
			} else {
				m.setFocus(FocusSidebar)
			}
			m.syncFooter()
		}
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "n":
		m.titlePrompt = true
		m.titleInput.Reset()
		m.titleInput.Focus()
		m.syncFooter()
		return m, nil

	case "d":
		if sel := m.sidebar.SelectedSession(); sel != nil {
			m.confirmDeleteID = sel.ID
			m.confirmDeleteTitle = sel.Title
			m.syncFooter()
		}
		return m, nil

	case keys.Enter:
		if sel := m.sidebar.SelectedSession(); sel != nil {
			cmd := m.activateSession(sel.ID)
			m.setFocus(FocusChat)
			m.syncFooter()
			return m, cmd
		}
		return m, nil
	}

	// Navigation keys fall through to the sidebar
	return nil, nil
}

func (m *Model) handleChatKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Enter:
		return m.handleSend()
	case keys.Escape:
		m.setFocus(FocusSidebar)
		m.syncFooter()
		return m, nil
	}

	// Everything else (including shift+enter for newlines) goes to the input
	return nil, nil
}

// handleSend starts an exchange from the current input. Guard failures are
// silent no-ops: an empty input, a missing session, or an exchange already in
// flight just leave the input untouched.
func (m *Model) handleSend() (tea.Model, tea.Cmd) {
	ex, err := m.store.BeginExchange(m.chat.GetInput())
	if err != nil {
		logger.Debug("App: send blocked: %v", err)
		return m, nil
	}

	m.chat.ClearInput()
	m.chat.SetMessages(m.store.Messages())
	m.chat.SetWaiting(true)
	m.sidebar.SetBusy(ex.SessionID, true)
	m.syncFooter()

	cmds := []tea.Cmd{m.sendMessageCmd(ex), ui.StopwatchTick()}
	if !m.sidebarTicking {
		m.sidebarTicking = true
		cmds = append(cmds, ui.SidebarTick())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleTitlePromptKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		m.titlePrompt = false
		m.titleInput.Blur()
		m.syncFooter()
		return m, nil

	case keys.Enter:
		title := m.titleInput.Value()
		m.titlePrompt = false
		m.titleInput.Blur()
		m.syncFooter()
		return m, m.createSessionCmd(title)
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmDeleteKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y":
		id := m.confirmDeleteID
		m.confirmDeleteID = ""
		m.confirmDeleteTitle = ""
		m.syncFooter()
		return m, m.deleteSessionCmd(id)

	case "n", keys.Escape:
		m.confirmDeleteID = ""
		m.confirmDeleteTitle = ""
		m.syncFooter()
	}
	return m, nil
}

// resumePendingTicks restarts the animation loops after state changes that can
// leave an exchange in flight (e.g. switching to a session that is awaiting a
// reply while the spinner loop already stopped).
func (m *Model) resumePendingTicks() tea.Cmd {
	var cmds []tea.Cmd
	if m.store.Awaiting() && !m.chat.IsWaiting() {
		m.chat.SetWaiting(true)
		cmds = append(cmds, ui.StopwatchTick())
	}
	if m.sidebar.HasBusy() && !m.sidebarTicking {
		m.sidebarTicking = true
		cmds = append(cmds, ui.SidebarTick())
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// updateSizes recalculates the panel dimensions after a resize
func (m *Model) updateSizes() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)

	contentHeight := m.height - 2 // header + footer
	if contentHeight < 1 {
		contentHeight = 1
	}

	sidebarWidth := ui.SidebarWidth
	if sidebarWidth > m.width/2 {
		sidebarWidth = m.width / 2
	}
	m.sidebar.SetSize(sidebarWidth, contentHeight)
	m.chat.SetSize(m.width-sidebarWidth, contentHeight)
}

// restoreLastActive re-selects the saved last-active chat after the initial
// session load, falling back to the newest chat when it is gone.
func (m *Model) restoreLastActive() tea.Cmd {
	if m.restoredActive {
		return nil
	}
	m.restoredActive = true

	sessions := m.store.Sessions()
	if len(sessions) == 0 {
		return nil
	}

	target := m.config.GetLastActiveChatID()
	found := false
	for _, sess := range sessions {
		if sess.ID == target {
			found = true
			break
		}
	}
	if !found {
		target = sessions[0].ID
	}

	cmd := m.activateSession(target)
	m.sidebar.SelectSession(target)
	m.syncFooter()
	return cmd
}

// activeSessionTitle returns the active session's title, or a fallback
func (m *Model) activeSessionTitle() string {
	if active := m.store.Active(); active != nil {
		return active.Title
	}
	return chat.DefaultTitle
}
