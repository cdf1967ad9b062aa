package sync

import (
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
)

// Normalize converts an inbox record into a message of conversationID.
// Missing fields get defaults; a missing timestamp becomes received, so one
// malformed record never blocks the rest of a batch.
func Normalize(r model.Record, currentUserID, conversationID string, received time.Time) model.Message {
	name := r.SenderName
	if name == "" {
		name = model.UnknownSender
	}
	sentAt := r.SentAt.Time
	if sentAt.IsZero() {
		sentAt = received
	}
	return model.Message{
		ID:                r.ID,
		ConversationID:    conversationID,
		SenderID:          r.SenderID,
		SenderDisplayName: name,
		Text:              r.Content,
		SentAt:            sentAt,
		IsCurrentUser:     r.SenderID != "" && r.SenderID == currentUserID,
		Status:            model.StatusConfirmed,
		Kind:              model.ParseKind(r.ContentKind),
	}
}

// NormalizeBatch converts records, skipping those without an id.
func NormalizeBatch(records []model.Record, currentUserID, conversationID string, received time.Time) []model.Message {
	out := make([]model.Message, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		out = append(out, Normalize(r, currentUserID, conversationID, received))
	}
	return out
}
