package chat

import (
	"errors"
	"strings"

	"github.com/parleyhq/parley/internal/logger"
)

// Send preconditions and guards. These are expected conditions, not faults,
// so they are sentinel errors rather than structured ones.
var (
	// ErrEmptyMessage is returned when the trimmed input is empty.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoActiveSession is returned when no session is selected.
	ErrNoActiveSession = errors.New("no active session")
	// ErrExchangeInFlight is returned when the active session already has an
	// exchange awaiting its reply. One exchange per session at a time.
	ErrExchangeInFlight = errors.New("exchange already in flight for session")
)

// Exchange is one user-message -> assistant-reply round trip, tagged with the
// session it belongs to so a reply arriving after a session switch can be
// routed (or discarded) correctly.
type Exchange struct {
	SessionID string
	Content   string
}

// BeginExchange starts a send: it validates the input, appends the user
// message to the log optimistically (visible before the round trip), and
// marks the active session as awaiting a reply. The returned Exchange carries
// what the gateway call needs. Empty input or no active session is a no-op
// error; the log is untouched in every error case.
func (s *Store) BeginExchange(text string) (Exchange, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return Exchange{}, ErrEmptyMessage
	}
	if s.activeID == "" {
		return Exchange{}, ErrNoActiveSession
	}
	if s.pending[s.activeID] {
		return Exchange{}, ErrExchangeInFlight
	}

	s.Append(NewUserMessage(content))
	s.pending[s.activeID] = true
	logger.Log("Store: exchange started for session %s (%d chars)", s.activeID, len(content))
	return Exchange{SessionID: s.activeID, Content: content}, nil
}

// ResolveExchange settles an exchange with the assistant's reply. The reply
// is appended only when its session is still active; otherwise it is
// discarded locally (the backend already persisted it, and the next reload of
// that session picks it up). Returns whether the reply was appended.
func (s *Store) ResolveExchange(sessionID, response string) bool {
	return s.settle(sessionID, response)
}

// FailExchange settles a failed exchange. The optimistic user message stays
// in the log; a fixed error reply is appended in place of the real one so the
// failure degrades into visible history instead of discarding user intent.
func (s *Store) FailExchange(sessionID string) bool {
	logger.Warn("Store: exchange failed for session %s", sessionID)
	return s.settle(sessionID, ErrorReply)
}

// Awaiting reports whether the active session has an exchange in flight.
// This is the boolean the presentation layer renders as the pending
// indicator and uses to disable the input.
func (s *Store) Awaiting() bool {
	return s.activeID != "" && s.pending[s.activeID]
}

// AwaitingFor reports whether the given session has an exchange in flight.
func (s *Store) AwaitingFor(sessionID string) bool {
	return s.pending[sessionID]
}

func (s *Store) settle(sessionID, reply string) bool {
	delete(s.pending, sessionID)
	if sessionID != s.activeID {
		logger.Log("Store: discarding reply for session %s (active=%s)", sessionID, s.activeID)
		return false
	}
	s.Append(NewAssistantMessage(reply))
	return true
}
