package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleyhq/parley/internal/ui"
)

// View renders the full application layout: header, the two panels side by
// side, and the footer. The footer line doubles as the delete confirmation
// and the new-chat title prompt.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion

	v.SetContent(m.RenderToString())
	return v
}

// RenderToString renders the current view as a string. Useful for tests.
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	m.syncHeader()

	panels := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.chat.View())

	bottom := m.footer.View()
	if m.titlePrompt {
		bottom = m.renderTitlePrompt()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		panels,
		bottom,
	)
}

func (m *Model) renderTitlePrompt() string {
	label := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorSecondary).
		Render(" New chat title: ")
	hint := lipgloss.NewStyle().
		Foreground(ui.ColorTextMuted).
		Render("  enter: create  esc: cancel")
	return label + m.titleInput.View() + hint
}
