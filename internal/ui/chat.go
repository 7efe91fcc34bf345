package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/keys"
)

// Chat represents the right panel with the conversation view and the input
// area below it.
type Chat struct {
	viewport      viewport.Model
	input         textarea.Model
	width         int
	height        int
	focused       bool
	messages      []chat.Message
	sessionTitle  string
	hasSession    bool
	waiting       bool      // Awaiting the assistant's reply
	waitStartTime time.Time // When waiting started (for stopwatch)
	waitingVerb   string    // Random verb to display while waiting
	loadError     string    // Shown when a history reload failed
}

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 0
	ti.SetHeight(3)
	ti.ShowLineNumbers = false
	ti.Prompt = ""

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
		messages: []chat.Message{},
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	chatPanelHeight := height - InputTotalHeight

	innerWidth := width - 2       // panel border
	viewportHeight := chatPanelHeight - 2
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(innerWidth)
	c.viewport.SetHeight(viewportHeight)
	c.input.SetWidth(innerWidth - 2) // input border padding
	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetSession sets the displayed session and its message log
func (c *Chat) SetSession(title string, messages []chat.Message) {
	c.sessionTitle = title
	c.messages = messages
	c.hasSession = true
	c.loadError = ""
	c.updateContent()
}

// SetMessages replaces the displayed message log
func (c *Chat) SetMessages(messages []chat.Message) {
	c.messages = messages
	c.loadError = ""
	c.updateContent()
}

// ClearSession clears the displayed session
func (c *Chat) ClearSession() {
	c.sessionTitle = ""
	c.messages = nil
	c.hasSession = false
	c.waiting = false
	c.loadError = ""
	c.updateContent()
}

// SetLoadError displays a history-load failure note. The session stays
// selected but shows no history.
func (c *Chat) SetLoadError(msg string) {
	c.loadError = msg
	c.messages = nil
	c.updateContent()
}

// GetInput returns the current input text, trimmed
func (c *Chat) GetInput() string {
	return strings.TrimSpace(c.input.Value())
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetWaiting sets the awaiting-reply state
func (c *Chat) SetWaiting(waiting bool) {
	c.waiting = waiting
	if waiting {
		c.waitStartTime = time.Now()
		c.waitingVerb = randomThinkingVerb()
	}
	c.updateContent()
}

// IsWaiting returns whether the panel shows the awaiting-reply indicator
func (c *Chat) IsWaiting() bool {
	return c.waiting
}

// renderNoSessionMessage renders the placeholder when no session is selected
func (c *Chat) renderNoSessionMessage() string {
	msgStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(msgStyle.Italic(true).Render("No chat selected"))
	sb.WriteString("\n\n")
	sb.WriteString(msgStyle.Render("To get started:"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("n"))
	sb.WriteString(msgStyle.Render(" to start a new chat"))
	return sb.String()
}

func (c *Chat) updateContent() {
	var sb strings.Builder

	wrapWidth := c.viewport.Width()
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	if !c.hasSession {
		sb.WriteString(c.renderNoSessionMessage())
	} else if c.loadError != "" {
		sb.WriteString(StatusErrorStyle.Render("Could not load history"))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).Render(c.loadError))
	} else if len(c.messages) == 0 && !c.waiting {
		sb.WriteString(lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("Start the conversation..."))
	} else {
		for i, msg := range c.messages {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(renderMessage(msg, wrapWidth))
		}

		if c.waiting {
			if len(c.messages) > 0 {
				sb.WriteString("\n\n")
			}
			elapsed := time.Since(c.waitStartTime)
			stopwatchStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
			sb.WriteString(ChatAssistantStyle.Render("Assistant:"))
			sb.WriteString("\n")
			sb.WriteString(StatusLoadingStyle.Render(c.waitingVerb + "... "))
			sb.WriteString(stopwatchStyle.Render(formatElapsed(elapsed)))
		}
	}

	c.viewport.SetContent(sb.String())
	c.viewport.GotoBottom()
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.(type) {
	case StopwatchTickMsg:
		if c.waiting {
			c.updateContent()
			cmds = append(cmds, StopwatchTick())
		}
		return c, tea.Batch(cmds...)
	}

	if c.focused && c.hasSession {
		// Scroll keys go to the viewport, everything else to the input
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
			switch keyMsg.String() {
			case keys.PgUp, keys.PgDown, keys.CtrlUp, keys.CtrlDown,
				keys.CtrlU, keys.CtrlD:
				var cmd tea.Cmd
				c.viewport, cmd = c.viewport.Update(msg)
				cmds = append(cmds, cmd)
				return c, tea.Batch(cmds...)
			}
		}

		// Keystrokes are staged in the input only while no reply is pending;
		// the send trigger is disabled during an exchange.
		if !c.waiting {
			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			cmds = append(cmds, cmd)
		}

		if _, isKey := msg.(tea.KeyPressMsg); isKey {
			return c, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	var viewportContent string
	if !c.hasSession {
		viewportContent = c.renderNoSessionMessage()
	} else {
		viewportContent = c.viewport.View()
	}

	if !c.hasSession {
		return panelStyle.Width(c.width).Height(c.height).Render(viewportContent)
	}

	chatPanelHeight := c.height - InputTotalHeight
	chatPanel := panelStyle.Width(c.width).Height(chatPanelHeight).Render(viewportContent)

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	inputArea := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, chatPanel, inputArea)
}
