package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/keys"
)

// Sidebar represents the left panel with the session list, newest first.
type Sidebar struct {
	sessions     []chat.Session
	activeID     string
	selectedIdx  int
	width        int
	height       int
	focused      bool
	scrollOffset int
	busySessions map[string]bool // session IDs awaiting a reply
	spinnerFrame int
	spinnerTick  int
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	return &Sidebar{
		busySessions: make(map[string]bool),
	}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.clampScroll()
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetSessions replaces the displayed session list, keeping the selection on
// the same session when it survives the update.
func (s *Sidebar) SetSessions(sessions []chat.Session) {
	var keepID string
	if s.selectedIdx >= 0 && s.selectedIdx < len(s.sessions) {
		keepID = s.sessions[s.selectedIdx].ID
	}

	s.sessions = sessions
	s.selectedIdx = 0
	for i, sess := range sessions {
		if sess.ID == keepID {
			s.selectedIdx = i
			break
		}
	}
	s.clampScroll()
}

// SetActive marks which session is active (shown with a marker)
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SelectSession moves the selection highlight to the given session
func (s *Sidebar) SelectSession(id string) {
	for i, sess := range s.sessions {
		if sess.ID == id {
			s.selectedIdx = i
			s.clampScroll()
			return
		}
	}
}

// SelectedSession returns the session under the selection highlight, or nil
func (s *Sidebar) SelectedSession() *chat.Session {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.sessions) {
		return nil
	}
	sess := s.sessions[s.selectedIdx]
	return &sess
}

// SetBusy marks a session as awaiting a reply (spinner shown)
func (s *Sidebar) SetBusy(sessionID string, busy bool) {
	if busy {
		s.busySessions[sessionID] = true
	} else {
		delete(s.busySessions, sessionID)
	}
}

// HasBusy returns whether any session is awaiting a reply
func (s *Sidebar) HasBusy() bool {
	return len(s.busySessions) > 0
}

// AdvanceSpinner steps the spinner animation one tick
func (s *Sidebar) AdvanceSpinner() {
	s.spinnerTick++
	hold := spinnerFrameHoldTimes[s.spinnerFrame%len(spinnerFrameHoldTimes)]
	if s.spinnerTick >= hold {
		s.spinnerTick = 0
		s.spinnerFrame = (s.spinnerFrame + 1) % len(spinnerFrames)
	}
}

// Update handles key messages when the sidebar is focused
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused {
		return s, nil
	}

	switch keyMsg.String() {
	case keys.Up, "k":
		if s.selectedIdx > 0 {
			s.selectedIdx--
			s.clampScroll()
		}
	case keys.Down, "j":
		if s.selectedIdx < len(s.sessions)-1 {
			s.selectedIdx++
			s.clampScroll()
		}
	case keys.Home:
		s.selectedIdx = 0
		s.clampScroll()
	case keys.End:
		if len(s.sessions) > 0 {
			s.selectedIdx = len(s.sessions) - 1
			s.clampScroll()
		}
	}
	return s, nil
}

// visibleRows returns how many session rows fit in the panel
func (s *Sidebar) visibleRows() int {
	rows := s.height - 4 // border + title + spacing
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (s *Sidebar) clampScroll() {
	rows := s.visibleRows()
	if s.selectedIdx < s.scrollOffset {
		s.scrollOffset = s.selectedIdx
	}
	if s.selectedIdx >= s.scrollOffset+rows {
		s.scrollOffset = s.selectedIdx - rows + 1
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}
}

// View renders the sidebar panel
func (s *Sidebar) View() string {
	panelStyle := PanelStyle
	if s.focused {
		panelStyle = PanelFocusedStyle
	}

	var sb strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	sb.WriteString(titleStyle.Render(" Chats"))
	sb.WriteString("\n\n")

	if len(s.sessions) == 0 {
		sb.WriteString(lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render(" No chats yet — press n"))
	} else {
		rows := s.visibleRows()
		end := s.scrollOffset + rows
		if end > len(s.sessions) {
			end = len(s.sessions)
		}
		for i := s.scrollOffset; i < end; i++ {
			sb.WriteString(s.renderRow(i))
			sb.WriteString("\n")
		}
	}

	return panelStyle.Width(s.width).Height(s.height).Render(sb.String())
}

func (s *Sidebar) renderRow(i int) string {
	sess := s.sessions[i]

	marker := " "
	if sess.ID == s.activeID {
		marker = SidebarActiveMarkStyle.Render("●")
	}

	status := " "
	if s.busySessions[sess.ID] {
		status = SidebarSpinnerStyle.Render(spinnerFrames[s.spinnerFrame])
	}

	title := truncateTitle(sess.Title, SidebarTitleWidth)

	row := marker + " " + title
	itemStyle := SidebarItemStyle
	if i == s.selectedIdx {
		itemStyle = SidebarSelectedStyle
	}
	return itemStyle.Render(row) + " " + status
}

// truncateTitle shortens a title to fit the sidebar, appending an ellipsis.
// Widths are measured in terminal cells, not runes.
func truncateTitle(title string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(title) <= width {
		return title
	}
	return runewidth.Truncate(title, width, "…")
}
