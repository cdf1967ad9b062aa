// Package outbox implements optimistic sending: a placeholder is shown at once
// and later confirmed in place or rolled back.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/fleetchat/internal/bus"
	"github.com/matheus3301/fleetchat/internal/client"
	"github.com/matheus3301/fleetchat/internal/model"
	intsync "github.com/matheus3301/fleetchat/internal/sync"
	"go.uber.org/zap"
)

var (
	// ErrEmptyText is returned when asked to send a blank message.
	ErrEmptyText = errors.New("message text is empty")
	// ErrConversationChanged is returned when the list moved to another
	// conversation before the placeholder could be added.
	ErrConversationChanged = errors.New("conversation changed before send")
)

// MessageSender is the send endpoint of the messaging API.
type MessageSender interface {
	Send(ctx context.Context, req client.SendRequest) (client.SendResult, error)
}

// List is the message list placeholders live in. Update must apply fn
// atomically to the list of conversationID, and return false without calling
// fn when the list no longer holds that conversation.
type List interface {
	Update(conversationID string, fn func([]model.Message) []model.Message) bool
}

// Composer holds the text the user is writing.
type Composer interface {
	Draft() string
	SetDraft(text string)
}

// Notifier surfaces send failures to the user.
type Notifier interface {
	Notify(err error)
}

// Route addresses an outgoing message.
type Route struct {
	ConversationID   string
	RecipientUserIDs []string
	RecipientEmails  []string
	GroupID          string
}

// Sender coordinates optimistic sends for one conversation view.
type Sender struct {
	api      MessageSender
	list     List
	composer Composer
	notifier Notifier
	bus      *bus.Bus
	logger   *zap.Logger

	userID   string
	userName string
	timeout  time.Duration
	now      func() time.Time

	wg gosync.WaitGroup
}

// Option configures a Sender.
type Option func(*Sender)

// WithCurrentUser sets the author id and display name of placeholders.
func WithCurrentUser(id, name string) Option {
	return func(s *Sender) {
		s.userID = id
		s.userName = name
	}
}

// WithComposer sets the draft holder cleared on send and restored on failure.
func WithComposer(c Composer) Option {
	return func(s *Sender) { s.composer = c }
}

// WithNotifier sets where send failures are reported.
func WithNotifier(n Notifier) Option {
	return func(s *Sender) { s.notifier = n }
}

// WithTimeout bounds each send call.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now for placeholder timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSender creates a send coordinator writing placeholders into list.
func NewSender(api MessageSender, list List, b *bus.Bus, logger *zap.Logger, opts ...Option) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sender{
		api:     api,
		list:    list,
		bus:     b,
		logger:  logger,
		timeout: client.DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send appends a pending placeholder for text, clears the draft and issues
// exactly one send call in the background. It returns the placeholder id.
func (s *Sender) Send(ctx context.Context, route Route, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	now := s.now()
	placeholder := model.Message{
		ID:                newPlaceholderID(now),
		ConversationID:    route.ConversationID,
		SenderID:          s.userID,
		SenderDisplayName: s.userName,
		Text:              text,
		SentAt:            now,
		IsCurrentUser:     true,
		Status:            model.StatusPending,
		Kind:              model.KindText,
	}
	added := s.list.Update(route.ConversationID, func(old []model.Message) []model.Message {
		return intsync.Merge(old, []model.Message{placeholder})
	})
	if !added {
		return "", ErrConversationChanged
	}
	s.bus.Emit(bus.KindMessageUpserted, bus.MessagesChanged{ConversationID: route.ConversationID, Count: 1})
	if s.composer != nil {
		s.composer.SetDraft("")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(ctx, route, placeholder)
	}()
	return placeholder.ID, nil
}

func (s *Sender) deliver(ctx context.Context, route Route, placeholder model.Message) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.api.Send(ctx, route.Request(placeholder.Text))
	if err != nil {
		s.rollback(route, placeholder, err)
		return
	}

	s.list.Update(route.ConversationID, func(old []model.Message) []model.Message {
		return intsync.Confirm(old, placeholder.ID, res.MessageID, res.SentAt.Time)
	})
	s.logger.Info("message sent",
		zap.String("placeholder_id", placeholder.ID),
		zap.String("server_msg_id", res.MessageID),
		zap.String("conversation_id", route.ConversationID))
	s.bus.Emit(bus.KindMessageSendAck, bus.SendAck{
		ConversationID: route.ConversationID,
		PlaceholderID:  placeholder.ID,
		ServerID:       res.MessageID,
	})
}

func (s *Sender) rollback(route Route, placeholder model.Message, err error) {
	s.logger.Error("failed to send message", zap.Error(err),
		zap.String("placeholder_id", placeholder.ID),
		zap.String("conversation_id", route.ConversationID))

	shown := s.list.Update(route.ConversationID, func(old []model.Message) []model.Message {
		out, _ := intsync.Remove(old, placeholder.ID)
		return out
	})
	// The draft belongs to whatever conversation is on screen now: restore only
	// into the one the message was written in, and never over newer text.
	if shown && s.composer != nil && s.composer.Draft() == "" {
		s.composer.SetDraft(placeholder.Text)
	}
	if s.notifier != nil {
		s.notifier.Notify(fmt.Errorf("send failed: %w", err))
	}
	s.bus.Emit(bus.KindMessageSendFailed, bus.SendFailed{
		ConversationID: route.ConversationID,
		PlaceholderID:  placeholder.ID,
		Text:           placeholder.Text,
		Err:            err,
	})
}

// Wait blocks until every in-flight send has settled.
func (s *Sender) Wait() {
	s.wg.Wait()
}

func newPlaceholderID(now time.Time) string {
	return fmt.Sprintf("temp-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
