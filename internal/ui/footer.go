package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width          int
	bindings       []KeyBinding
	hasChat        bool // Whether a chat is selected
	sidebarFocused bool // Whether sidebar has focus
	awaiting       bool // Whether the active chat awaits a reply
	confirmDelete  bool // Whether a delete confirmation is armed
	titlePrompt    bool // Whether the new-chat title prompt is open
	deleteTitle    string
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		bindings: []KeyBinding{
			{Key: "tab", Desc: "switch pane"},
			{Key: "n", Desc: "new chat"},
			{Key: "enter", Desc: "open"},
			{Key: "d", Desc: "delete"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(hasChat, sidebarFocused, awaiting bool) {
	f.hasChat = hasChat
	f.sidebarFocused = sidebarFocused
	f.awaiting = awaiting
}

// SetConfirmDelete arms or disarms the delete confirmation display.
// title names the chat about to be deleted.
func (f *Footer) SetConfirmDelete(armed bool, title string) {
	f.confirmDelete = armed
	f.deleteTitle = title
}

// SetTitlePrompt toggles the new-chat title prompt display
func (f *Footer) SetTitlePrompt(open bool) {
	f.titlePrompt = open
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// View renders the footer
func (f *Footer) View() string {
	if f.confirmDelete {
		warn := FooterWarnStyle.Render("Delete \"" + f.deleteTitle + "\"?")
		keys := FooterKeyStyle.Render("y") + FooterDescStyle.Render(": confirm  ") +
			FooterKeyStyle.Render("n") + FooterDescStyle.Render("/") +
			FooterKeyStyle.Render("esc") + FooterDescStyle.Render(": cancel")
		return FooterStyle.Width(f.width).Render(warn + "  " + keys)
	}

	if f.titlePrompt {
		promptBindings := []KeyBinding{
			{Key: "enter", Desc: "create"},
			{Key: "esc", Desc: "cancel"},
		}
		return FooterStyle.Width(f.width).Render(f.join(promptBindings))
	}

	if !f.sidebarFocused && f.hasChat {
		chatBindings := []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "shift+enter", Desc: "newline"},
			{Key: "tab", Desc: "switch pane"},
			{Key: "pgup/dn", Desc: "scroll"},
		}
		if f.awaiting {
			chatBindings = []KeyBinding{
				{Key: "tab", Desc: "switch pane"},
				{Key: "pgup/dn", Desc: "scroll"},
			}
		}
		return FooterStyle.Width(f.width).Render(f.join(chatBindings))
	}

	var shown []KeyBinding
	for _, b := range f.bindings {
		// Can't switch to or act on a chat when none is selected
		if (b.Key == "tab" || b.Key == "enter" || b.Key == "d" || b.Key == "pgup/dn") && !f.hasChat {
			continue
		}
		shown = append(shown, b)
	}
	return FooterStyle.Width(f.width).Render(f.join(shown))
}

func (f *Footer) join(bindings []KeyBinding) string {
	var parts []string
	for _, b := range bindings {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}
	sep := "  " + lipgloss.NewStyle().Foreground(ColorBorder).Render("|") + "  "
	return strings.Join(parts, sep)
}
