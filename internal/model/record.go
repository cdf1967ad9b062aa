package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// MessageTypeGroup marks a record delivered to a group conversation.
const MessageTypeGroup = "Group"

// Record is a message as returned by the pull and history endpoints.
// Every field except ID may be missing.
type Record struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	SentAt         Timestamp `json:"sentAt"`
	MessageType    string    `json:"messageType"`
	GroupID        string    `json:"groupId,omitempty"`
	ConversationID string    `json:"conversationId,omitempty"`
	ContentKind    string    `json:"contentKind,omitempty"`
}

// IsGroup reports whether the record belongs to a group conversation.
func (r Record) IsGroup() bool {
	return r.MessageType == MessageTypeGroup
}

// Timestamp decodes either an RFC 3339 string or unix milliseconds.
type Timestamp struct {
	time.Time
}

// MarshalJSON encodes the timestamp as RFC 3339 with milliseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.UnixMilli(ms)
	return nil
}
