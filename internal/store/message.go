package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
)

// Limits applied to inbox pulls and history pages.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ErrNoConversation is returned for a multi-recipient direct message that
// names no conversation.
var ErrNoConversation = errors.New("multi-recipient message needs a conversation id")

// CreateMessage stores a message and fans it out to the recipients' inboxes.
// Direct conversation keys are derived from the participants so they always
// match what clients compute.
func (db *DB) CreateMessage(ctx context.Context, nm NewMessage) (*Message, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := Message{
		ID:          uuid.NewString(),
		SenderID:    nm.SenderID,
		SenderName:  senderName(ctx, tx, nm.SenderID),
		Content:     nm.Content,
		ContentKind: nm.ContentKind,
		SentAt:      time.Now().UnixMilli(),
	}

	var recipients []string
	if nm.GroupID != "" {
		members, err := memberIDs(ctx, tx, nm.GroupID)
		if err != nil {
			return nil, fmt.Errorf("group members: %w", err)
		}
		if len(members) == 0 {
			return nil, ErrGroupNotFound
		}
		isMember := false
		for _, id := range members {
			if id == nm.SenderID {
				isMember = true
				continue
			}
			recipients = append(recipients, id)
		}
		if !isMember {
			return nil, ErrNotMember
		}
		m.MessageType = model.MessageTypeGroup
		m.GroupID = nm.GroupID
		m.ConversationID = conversation.GroupKey(nm.GroupID)
	} else {
		recipients, err = directRecipients(ctx, tx, nm)
		if err != nil {
			return nil, err
		}
		m.MessageType = MessageTypeDirect
		switch {
		case len(recipients) == 1:
			for _, id := range []string{nm.SenderID, recipients[0]} {
				if err := conversation.ValidateParticipantID(id); err != nil {
					return nil, err
				}
			}
			m.ConversationID = conversation.DirectID(nm.SenderID, recipients[0])
		case nm.ConversationID != "":
			m.ConversationID = nm.ConversationID
		default:
			return nil, ErrNoConversation
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, sender_name, content, content_kind, message_type, group_id, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.SenderName, m.Content, m.ContentKind, m.MessageType, m.GroupID, m.SentAt); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if nm.EchoToSender {
		recipients = append(recipients, nm.SenderID)
	}
	for _, to := range recipients {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO inbox (message_id, recipient_id) VALUES (?, ?)`, m.ID, to); err != nil {
			return nil, fmt.Errorf("deliver to %q: %w", to, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &m, nil
}

func directRecipients(ctx context.Context, tx *sql.Tx, nm NewMessage) ([]string, error) {
	seen := map[string]bool{nm.SenderID: true}
	var out []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range nm.RecipientUserIDs {
		add(id)
	}
	for _, email := range nm.RecipientEmails {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`,
			strings.ToLower(strings.TrimSpace(email))).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %q: %w", email, err)
		}
		add(id)
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	return out, nil
}

func senderName(ctx context.Context, tx *sql.Tx, userID string) string {
	var first, last, email string
	err := tx.QueryRowContext(ctx,
		`SELECT first_name, last_name, email FROM users WHERE id = ?`, userID).Scan(&first, &last, &email)
	if err != nil {
		return ""
	}
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	return email
}

// PullInbox returns up to limit undelivered messages for userID, oldest first,
// and marks them delivered.
func (db *DB) PullInbox(ctx context.Context, userID string, limit int) ([]Message, error) {
	limit = clampPageSize(limit)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.sender_name, m.content, m.content_kind, m.message_type, m.group_id, m.sent_at
		FROM inbox i
		JOIN messages m ON m.id = i.message_id
		WHERE i.recipient_id = ? AND i.delivered_at IS NULL
		ORDER BY m.sent_at, m.seq
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE inbox SET delivered_at = ? WHERE message_id = ? AND recipient_id = ?`, now, m.ID, userID); err != nil {
			return nil, fmt.Errorf("mark delivered: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// History returns one page of a conversation. Page 1 holds the newest messages
// and later pages walk back in time; each page is ordered oldest first.
func (db *DB) History(ctx context.Context, conversationID string, page, pageSize int) ([]Message, error) {
	pageSize = clampPageSize(pageSize)
	if page < 1 {
		page = 1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, sender_name, content, content_kind, message_type, group_id, sent_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY sent_at DESC, seq DESC
		LIMIT ? OFFSET ?`, conversationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// MessageCount returns the total number of messages.
func (db *DB) MessageCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	defer func() { _ = rows.Close() }()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Content,
			&m.ContentKind, &m.MessageType, &m.GroupID, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}
