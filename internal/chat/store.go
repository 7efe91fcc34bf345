package chat

import "github.com/parleyhq/parley/internal/logger"

// Store is the single state container for the client: the session registry,
// the active session's message log, and the per-session awaiting-reply flags.
// The log always reflects exactly one session; switching sessions replaces it
// wholesale (the durable copy lives behind the gateway).
type Store struct {
	sessions []Session
	activeID string
	log      []Message
	pending  map[string]bool // session ID -> exchange in flight
}

// NewStore creates an empty store. The session list is populated once at
// startup from the gateway via SetSessions.
func NewStore() *Store {
	return &Store{
		pending: make(map[string]bool),
	}
}

// SetSessions replaces the session list. Used for the initial load; a load
// failure is represented by an empty list (the app stays usable with zero
// chats). The active session is preserved if it survives, cleared otherwise.
func (s *Store) SetSessions(sessions []Session) {
	s.sessions = make([]Session, len(sessions))
	copy(s.sessions, sessions)

	if s.activeID != "" && s.indexOf(s.activeID) < 0 {
		logger.Log("Store: active session %s no longer listed, clearing", s.activeID)
		s.activeID = ""
		s.log = nil
	}
}

// Sessions returns a copy of the ordered session list.
func (s *Store) Sessions() []Session {
	sessions := make([]Session, len(s.sessions))
	copy(sessions, s.sessions)
	return sessions
}

// Active returns a copy of the active session, or nil if none is active.
func (s *Store) Active() *Session {
	if i := s.indexOf(s.activeID); i >= 0 {
		sess := s.sessions[i]
		return &sess
	}
	return nil
}

// ActiveID returns the active session's ID, or "" if none is active.
func (s *Store) ActiveID() string {
	return s.activeID
}

// SetActive marks the given session active and clears the log so the caller
// can reload it from the gateway. Returns false (and changes nothing) if the
// session is unknown or already active; an already-active selection must not
// trigger a redundant reload.
func (s *Store) SetActive(id string) bool {
	if id == s.activeID {
		return false
	}
	if s.indexOf(id) < 0 {
		logger.Warn("Store: SetActive for unknown session %s", id)
		return false
	}
	logger.Log("Store: switching active session %s -> %s", s.activeID, id)
	s.activeID = id
	s.log = nil
	return true
}

// AddSession prepends a freshly created session (newest-first order), makes it
// active, and clears the log. A new session starts with no history.
func (s *Store) AddSession(sess Session) {
	s.sessions = append([]Session{sess}, s.sessions...)
	s.activeID = sess.ID
	s.log = nil
}

// RemoveSession drops a session from the registry after the gateway confirmed
// deletion. If the removed session was active, the first remaining session in
// list order becomes active (with an empty log awaiting reload) or none if the
// list is now empty. Returns the new active ID and whether the active session
// changed.
func (s *Store) RemoveSession(id string) (newActive string, activeChanged bool) {
	i := s.indexOf(id)
	if i < 0 {
		return s.activeID, false
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	delete(s.pending, id)

	if id != s.activeID {
		return s.activeID, false
	}

	s.log = nil
	if len(s.sessions) > 0 {
		s.activeID = s.sessions[0].ID
	} else {
		s.activeID = ""
	}
	return s.activeID, true
}

// ApplyHistory installs the gateway's record for a session as the log. The
// result is discarded when the session is no longer active, so a slow reload
// can never leak another session's history into the current view. Returns
// whether the history was applied.
func (s *Store) ApplyHistory(sessionID string, messages []Message) bool {
	if sessionID == "" || sessionID != s.activeID {
		logger.Log("Store: discarding history for %s (active=%s)", sessionID, s.activeID)
		return false
	}
	s.log = make([]Message, len(messages))
	copy(s.log, messages)
	return true
}

// ClearLog empties the active log. Used when a reload fails: the session
// stays selected but shows no history rather than stale or foreign messages.
func (s *Store) ClearLog() {
	s.log = nil
}

// Messages returns a copy of the active session's ordered message log.
func (s *Store) Messages() []Message {
	messages := make([]Message, len(s.log))
	copy(messages, s.log)
	return messages
}

// Append adds a message to the end of the in-memory log. It never talks to
// the gateway; the send path owns remote persistence.
func (s *Store) Append(msg Message) {
	s.log = append(s.log, msg)
}

// ReplaceTail swaps the last n messages of the log for the given replacement.
// Kept for rollback/substitution flows; the default failure policy appends an
// error reply instead of rolling anything back.
func (s *Store) ReplaceTail(n int, messages []Message) {
	if n < 0 || n > len(s.log) {
		return
	}
	s.log = append(s.log[:len(s.log)-n], messages...)
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}
