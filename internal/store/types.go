package store

import (
	"errors"
	"strings"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
)

var (
	// ErrNoRecipients is returned when a direct message resolves to nobody.
	ErrNoRecipients = errors.New("no known recipients")
	// ErrNotMember is returned when a user writes to a group they are not in.
	ErrNotMember = errors.New("sender is not a member of the group")
	// ErrGroupNotFound is returned for an unknown group id.
	ErrGroupNotFound = errors.New("group not found")
)

// MessageTypeDirect marks a one-to-one message.
const MessageTypeDirect = "Direct"

// User is a registered account.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Message is a stored message.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Content        string
	ContentKind    string
	MessageType    string
	GroupID        string
	SentAt         int64
}

// Record converts a stored message to its wire form.
func (m Message) Record() model.Record {
	return model.Record{
		ID:             m.ID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		Content:        m.Content,
		SentAt:         model.Timestamp{Time: time.UnixMilli(m.SentAt)},
		MessageType:    m.MessageType,
		GroupID:        m.GroupID,
		ConversationID: m.ConversationID,
		ContentKind:    m.ContentKind,
	}
}

// NewMessage describes a message to store and fan out.
type NewMessage struct {
	SenderID         string
	Content          string
	ContentKind      string
	RecipientUserIDs []string
	RecipientEmails  []string
	ConversationID   string
	GroupID          string
	// EchoToSender also delivers the message to the sender's own inbox.
	EchoToSender bool
}
