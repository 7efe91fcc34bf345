// Package app wires the Bubble Tea model together: it owns the state
// container, routes key presses and async results, and keeps the panels in
// sync. All state mutation happens on the update loop; gateway calls run as
// commands that report back with typed messages.
package app

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/gateway"
	"github.com/parleyhq/parley/internal/logger"
	"github.com/parleyhq/parley/internal/ui"
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

// Model is the main Bubble Tea model
type Model struct {
	config  *config.Config
	gateway gateway.Gateway
	store   *chat.Store
	version string // App version (injected at build time)

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat

	width  int
	height int
	focus  Focus

	// Window focus, for suppressing desktop notifications while visible
	windowFocused bool

	// Delete confirmation state: armed for exactly one chat at a time
	confirmDeleteID    string
	confirmDeleteTitle string

	// New-chat title prompt
	titlePrompt bool
	titleInput  textinput.Model

	// Whether the sidebar spinner tick loop is running
	sidebarTicking bool

	// Whether the saved last-active chat was already restored after the
	// initial session load
	restoredActive bool
}

// New creates a new app model
func New(cfg *config.Config, gw gateway.Gateway, version string) *Model {
	titleInput := textinput.New()
	titleInput.Placeholder = chat.DefaultTitle
	titleInput.CharLimit = 120
	titleInput.SetWidth(40)

	m := &Model{
		config:        cfg,
		gateway:       gw,
		store:         chat.NewStore(),
		version:       version,
		header:        ui.NewHeader(),
		footer:        ui.NewFooter(),
		sidebar:       ui.NewSidebar(),
		chat:          ui.NewChat(),
		focus:         FocusSidebar,
		windowFocused: true,
		titleInput:    titleInput,
	}

	m.header.SetServerURL(cfg.GetServerURL())
	m.sidebar.SetFocused(true)
	m.syncFooter()

	return m
}

// Init starts the initial session load
func (m *Model) Init() tea.Cmd {
	return m.loadSessionsCmd()
}

// setFocus moves focus between the panels and keeps their focus flags in sync
func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	m.chat.SetFocused(f == FocusChat)
}

// syncFooter pushes the current interaction state into the footer
func (m *Model) syncFooter() {
	m.footer.SetContext(m.store.ActiveID() != "", m.focus == FocusSidebar, m.store.Awaiting())
	m.footer.SetConfirmDelete(m.confirmDeleteID != "", m.confirmDeleteTitle)
	m.footer.SetTitlePrompt(m.titlePrompt)
}

// syncHeader pushes the active chat title into the header
func (m *Model) syncHeader() {
	if active := m.store.Active(); active != nil {
		m.header.SetChatTitle(active.Title)
	} else {
		m.header.SetChatTitle("")
	}
}

// activateSession makes the given session active, reloads its history, and
// persists the choice. No-op when the session is already active.
func (m *Model) activateSession(id string) tea.Cmd {
	if !m.store.SetActive(id) {
		return nil
	}

	active := m.store.Active()
	m.sidebar.SetActive(id)
	m.chat.SetSession(active.Title, nil)
	m.chat.SetWaiting(m.store.Awaiting())
	m.syncHeader()

	m.config.SetLastActiveChatID(id)
	if err := m.config.Save(); err != nil {
		logger.Warn("App: failed to save config: %v", err)
	}

	return m.loadHistoryCmd(id)
}
