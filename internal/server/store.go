package server

import (
	"context"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Chat is a persisted chat session.
type Chat struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(256);not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Chat) TableName() string { return "chats" }

// Message is one persisted turn of a chat.
type Message struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ChatID    string    `gorm:"type:varchar(36);index;not null" json:"chat_id"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

func (Message) TableName() string { return "messages" }

// ErrChatNotFound is returned when a chat ID has no row.
var ErrChatNotFound = errors.New("chat not found")

// Store wraps the database with the queries the handlers need.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (or creates) the sqlite database at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Chat{}, &Message{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// CreateChat persists a new chat with the given title.
func (s *Store) CreateChat(ctx context.Context, title string) (*Chat, error) {
	now := time.Now().UTC()
	chat := &Chat{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChats returns all chats, most recently updated first.
func (s *Store) ListChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	if err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// GetChat returns a chat by ID, or ErrChatNotFound.
func (s *Store) GetChat(ctx context.Context, id string) (*Chat, error) {
	var chat Chat
	err := s.db.WithContext(ctx).First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// DeleteChat removes a chat and all of its messages. Deleting a chat that
// does not exist is not an error, matching the service's idempotent delete.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Chat{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Message{}, "chat_id = ?", id).Error
	})
}

// TouchChat bumps a chat's updated_at so it sorts to the top of the list.
func (s *Store) TouchChat(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&Chat{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

// InsertMessage persists one turn of a chat.
func (s *Store) InsertMessage(ctx context.Context, chatID, role, content string) (*Message, error) {
	msg := &Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a chat's messages, oldest first.
func (s *Store) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	var msgs []Message
	if err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
