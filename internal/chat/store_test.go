package chat

import (
	"testing"
	"time"
)

func makeSessions(ids ...string) []Session {
	sessions := make([]Session, len(ids))
	now := time.Now()
	for i, id := range ids {
		sessions[i] = Session{
			ID:        id,
			Title:     "Chat " + id,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return sessions
}

func TestSetSessionsPreservesActive(t *testing.T) {
	s := NewStore()
	s.SetSessions(makeSessions("a", "b"))
	s.SetActive("b")

	s.SetSessions(makeSessions("b", "c"))
	if s.ActiveID() != "b" {
		t.Errorf("ActiveID = %q, want %q", s.ActiveID(), "b")
	}
}

func TestSetSessionsClearsVanishedActive(t *testing.T) {
	s := NewStore()
	s.SetSessions(makeSessions("a", "b"))
	s.SetActive("a")
	s.Append(NewUserMessage("hello"))

	s.SetSessions(makeSessions("b"))
	if s.ActiveID() != "" {
		t.Errorf("ActiveID = %q, want empty", s.ActiveID())
	}
	if len(s.Messages()) != 0 {
		t.Errorf("log has %d messages, want 0", len(s.Messages()))
	}
}

func TestSetActive(t *testing.T) {
	tests := []struct {
		name        string
		setupActive string
		switchTo    string
		want        bool
		wantActive  string
	}{
		{"switch to other session", "a", "b", true, "b"},
		{"already active is a no-op", "a", "a", false, "a"},
		{"unknown session is a no-op", "a", "zzz", false, "a"},
		{"empty id is a no-op", "a", "", false, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.SetSessions(makeSessions("a", "b"))
			s.SetActive(tt.setupActive)

			got := s.SetActive(tt.switchTo)
			if got != tt.want {
				t.Errorf("SetActive(%q) = %v, want %v", tt.switchTo, got, tt.want)
			}
			if s.ActiveID() != tt.wantActive {
				t.Errorf("ActiveID = %q, want %q", s.ActiveID(), tt.wantActive)
			}
		})
	}
}

func TestSetActiveClearsLog(t *testing.T) {
	s := NewStore()
	s.SetSessions(makeSessions("a", "b"))
	s.SetActive("a")
	s.Append(NewUserMessage("hello"))
	s.Append(NewAssistantMessage("hi"))

	if !s.SetActive("b") {
		t.Fatal("SetActive returned false")
	}
	if len(s.Messages()) != 0 {
		t.Errorf("log has %d messages after switch, want 0", len(s.Messages()))
	}
}

func TestAddSessionPrependsAndActivates(t *testing.T) {
	s := NewStore()
	s.SetSessions(makeSessions("a"))
	s.SetActive("a")
	s.Append(NewUserMessage("old"))

	s.AddSession(Session{ID: "new", Title: "Fresh"})

	sessions := s.Sessions()
	if len(sessions) != 2 || sessions[0].ID != "new" {
		t.Fatalf("sessions = %v, want new session first", sessions)
	}
	if s.ActiveID() != "new" {
		t.Errorf("ActiveID = %q, want %q", s.ActiveID(), "new")
	}
	if len(s.Messages()) != 0 {
		t.Errorf("new session log has %d messages, want 0", len(s.Messages()))
	}
}

func TestRemoveSession(t *testing.T) {
	t.Run("removing active selects first remaining", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a", "b", "c"))
		s.SetActive("b")
		s.Append(NewUserMessage("hello"))

		newActive, changed := s.RemoveSession("b")
		if !changed {
			t.Error("activeChanged = false, want true")
		}
		if newActive != "a" {
			t.Errorf("newActive = %q, want %q", newActive, "a")
		}
		if len(s.Messages()) != 0 {
			t.Errorf("log has %d messages, want 0 (awaiting reload)", len(s.Messages()))
		}
	})

	t.Run("removing last session leaves none active", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a"))
		s.SetActive("a")

		newActive, changed := s.RemoveSession("a")
		if !changed {
			t.Error("activeChanged = false, want true")
		}
		if newActive != "" {
			t.Errorf("newActive = %q, want empty", newActive)
		}
	})

	t.Run("removing non-active leaves active untouched", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a", "b"))
		s.SetActive("a")
		s.Append(NewUserMessage("keep me"))

		newActive, changed := s.RemoveSession("b")
		if changed {
			t.Error("activeChanged = true, want false")
		}
		if newActive != "a" {
			t.Errorf("newActive = %q, want %q", newActive, "a")
		}
		if len(s.Messages()) != 1 {
			t.Errorf("log has %d messages, want 1", len(s.Messages()))
		}
	})

	t.Run("removing unknown session is a no-op", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a"))
		s.SetActive("a")

		newActive, changed := s.RemoveSession("zzz")
		if changed || newActive != "a" {
			t.Errorf("RemoveSession(zzz) = (%q, %v), want (a, false)", newActive, changed)
		}
	})

	t.Run("removing pending session drops its flag", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a", "b"))
		s.SetActive("a")
		if _, err := s.BeginExchange("hello"); err != nil {
			t.Fatalf("BeginExchange: %v", err)
		}

		s.RemoveSession("a")
		if s.AwaitingFor("a") {
			t.Error("removed session still marked awaiting")
		}
	})
}

func TestApplyHistory(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
	}

	t.Run("applies to active session", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a"))
		s.SetActive("a")

		if !s.ApplyHistory("a", history) {
			t.Fatal("ApplyHistory returned false for active session")
		}
		msgs := s.Messages()
		if len(msgs) != 2 || msgs[0].Content != "q1" || msgs[1].Content != "a1" {
			t.Errorf("Messages = %v, want the applied history in order", msgs)
		}
	})

	t.Run("discards for non-active session", func(t *testing.T) {
		s := NewStore()
		s.SetSessions(makeSessions("a", "b"))
		s.SetActive("b")

		if s.ApplyHistory("a", history) {
			t.Error("ApplyHistory returned true for non-active session")
		}
		if len(s.Messages()) != 0 {
			t.Errorf("log has %d messages, want 0", len(s.Messages()))
		}
	})
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetSessions(makeSessions("a"))
	s.SetActive("a")
	s.Append(NewUserMessage("hello"))

	msgs := s.Messages()
	msgs[0].Content = "mutated"
	if s.Messages()[0].Content != "hello" {
		t.Error("mutating the returned slice changed the store's log")
	}
}

func TestReplaceTail(t *testing.T) {
	s := NewStore()
	s.SetSessions(makeSessions("a"))
	s.SetActive("a")
	s.Append(NewUserMessage("one"))
	s.Append(NewAssistantMessage("two"))
	s.Append(NewUserMessage("three"))

	s.ReplaceTail(2, []Message{NewAssistantMessage("swapped")})
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[1].Content != "swapped" {
		t.Errorf("Messages = %v, want [one swapped]", msgs)
	}

	// Out-of-range n leaves the log untouched
	s.ReplaceTail(10, nil)
	if len(s.Messages()) != 2 {
		t.Errorf("log has %d messages after bad ReplaceTail, want 2", len(s.Messages()))
	}
}
