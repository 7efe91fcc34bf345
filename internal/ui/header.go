package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Header represents the top header bar
type Header struct {
	width     int
	chatTitle string
	serverURL string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetChatTitle sets the active chat title to display
func (h *Header) SetChatTitle(title string) {
	h.chatTitle = title
}

// SetServerURL sets the backend address shown next to the title
func (h *Header) SetServerURL(url string) {
	h.serverURL = url
}

// View renders the header
func (h *Header) View() string {
	titleText := " parley"
	var rightText string
	if h.chatTitle != "" {
		rightText = h.chatTitle
		if h.serverURL != "" {
			rightText += " (" + h.serverURL + ")"
		}
		rightText += " "
	} else if h.serverURL != "" {
		rightText = h.serverURL + " "
	}

	// Padding is measured in terminal cells so wide-rune titles stay flush right
	paddingLen := h.width - runewidth.StringWidth(titleText) - runewidth.StringWidth(rightText)
	if paddingLen < 0 {
		paddingLen = 0
	}

	fullContent := titleText + strings.Repeat(" ", paddingLen) + rightText

	return h.renderGradient(fullContent)
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a gradient background fading from
// the primary color into the terminal background
func (h *Header) renderGradient(content string) string {
	if len(content) == 0 {
		return ""
	}

	startR, startG, startB := parseHexColor("#7C3AED")
	endR, endG, endB := parseHexColor("#111827")

	serverStart := -1
	if h.serverURL != "" {
		serverStart = strings.Index(content, "("+h.serverURL+")")
	}

	runes := []rune(content)
	width := len(runes)
	var result strings.Builder

	for i, r := range runes {
		t := float64(i) / float64(width)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		bgColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))

		style := lipgloss.NewStyle().
			Background(bgColor).
			Bold(i < 7) // Bold for the "parley" title

		if serverStart >= 0 && i >= serverStart {
			style = style.Foreground(ColorTextMuted)
		} else {
			style = style.Foreground(ColorText)
		}

		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
