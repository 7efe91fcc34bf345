package server

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return store
}

func TestCreateAndListChats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateChat(ctx, "First")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if first.ID == "" {
		t.Error("created chat has empty ID")
	}

	if _, err := store.CreateChat(ctx, "Second"); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	// Bump the first chat so it sorts back to the top
	if err := store.TouchChat(ctx, first.ID); err != nil {
		t.Fatalf("TouchChat: %v", err)
	}

	chats, err := store.ListChats(ctx)
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
	if chats[0].ID != first.ID {
		t.Errorf("chats[0] = %q, want the touched chat %q first", chats[0].ID, first.ID)
	}
}

func TestGetChat(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateChat(ctx, "Lookup")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	got, err := store.GetChat(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if got.Title != "Lookup" {
		t.Errorf("title = %q, want %q", got.Title, "Lookup")
	}

	if _, err := store.GetChat(ctx, "missing"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("GetChat(missing) error = %v, want ErrChatNotFound", err)
	}
}

func TestDeleteChatCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c, err := store.CreateChat(ctx, "Doomed")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if _, err := store.InsertMessage(ctx, c.ID, "user", "hello"); err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	if _, err := store.InsertMessage(ctx, c.ID, "assistant", "hi"); err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}

	if err := store.DeleteChat(ctx, c.ID); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}

	if _, err := store.GetChat(ctx, c.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("GetChat after delete error = %v, want ErrChatNotFound", err)
	}
	msgs, err := store.ListMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d orphaned messages, want 0", len(msgs))
	}

	// Idempotent: deleting again is not an error
	if err := store.DeleteChat(ctx, c.ID); err != nil {
		t.Errorf("second DeleteChat: %v", err)
	}
}

func TestListMessagesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c, err := store.CreateChat(ctx, "Ordered")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	for _, content := range []string{"one", "two", "three"} {
		if _, err := store.InsertMessage(ctx, c.ID, "user", content); err != nil {
			t.Fatalf("InsertMessage(%q): %v", content, err)
		}
	}

	msgs, err := store.ListMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Errorf("messages out of order at %d", i)
		}
	}
}
