// Package chat holds the client-side conversation state: the ordered session
// list, the active session's message log, and the exchange coordinator that
// tracks in-flight message round trips. All mutation happens on the Bubble Tea
// update goroutine, so the package uses no locking.
package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrorReply is the synthetic assistant message shown when an exchange fails.
const ErrorReply = "Failed to get response from AI. Please try again."

// DefaultTitle is used when a session is created without an explicit title.
const DefaultTitle = "New Chat"

// Session is one titled conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn in a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage builds a user message timestamped now.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage builds an assistant message timestamped now.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}
