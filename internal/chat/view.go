// Package chat composes identity, polling, reconciliation, optimistic sending
// and name resolution into one conversation view.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	gosync "sync"
	"time"

	"github.com/matheus3301/fleetchat/internal/bus"
	"github.com/matheus3301/fleetchat/internal/contacts"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/outbox"
	"github.com/matheus3301/fleetchat/internal/status"
	intsync "github.com/matheus3301/fleetchat/internal/sync"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations that need an open view.
var ErrClosed = errors.New("conversation view is closed")

// API is the slice of the messaging API a view consumes.
type API interface {
	outbox.MessageSender
	contacts.Directory
	Pull(ctx context.Context, limit int) ([]model.Record, error)
	History(ctx context.Context, conversationID string, page, pageSize int) ([]model.Record, error)
}

// Config tunes a view.
type Config struct {
	UserID          string
	UserName        string
	PollInterval    time.Duration
	PageSize        int
	HistoryPageSize int
	RequestTimeout  time.Duration
	// EchoWindow is how close in time a polled copy of our own message must be
	// to a pending placeholder with the same text to confirm it. Zero disables.
	EchoWindow time.Duration
}

func (c Config) withDefaults() Config {
	if c.UserName == "" {
		c.UserName = "You"
	}
	if c.PageSize <= 0 {
		c.PageSize = intsync.DefaultPageSize
	}
	if c.HistoryPageSize <= 0 {
		c.HistoryPageSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = intsync.DefaultPollInterval
	}
	return c
}

// View owns the message list of one open conversation.
type View struct {
	api     API
	cfg     Config
	bus     *bus.Bus
	logger  *zap.Logger
	machine *status.Machine
	names   *contacts.Resolver
	sender  *outbox.Sender
	poller  *intsync.Poller

	mu          gosync.Mutex
	ctx         context.Context
	open        bool
	target      model.Target
	targets     []model.Target
	convID      string
	msgs        []model.Message
	historyPage int
	handle      *intsync.Handle

	draftMu gosync.Mutex
	draft   string

	notifier outbox.Notifier
}

// Option configures a View.
type Option func(*View)

// WithNotifier sets where user-visible send failures go.
func WithNotifier(n outbox.Notifier) Option {
	return func(v *View) { v.notifier = n }
}

// NewView creates a closed view. Call Open to start it.
func NewView(api API, cfg Config, b *bus.Bus, logger *zap.Logger, opts ...Option) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	v := &View{
		api:     api,
		cfg:     cfg,
		bus:     b,
		logger:  logger,
		machine: status.NewMachine(b),
		names:   contacts.NewResolver(api, logger),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.sender = outbox.NewSender(api, v, b, logger,
		outbox.WithCurrentUser(cfg.UserID, cfg.UserName),
		outbox.WithComposer(v),
		outbox.WithNotifier(v),
		outbox.WithTimeout(cfg.RequestTimeout),
	)
	v.poller = intsync.NewPoller(api.Pull, v.ingest,
		intsync.WithInterval(cfg.PollInterval),
		intsync.WithPageSize(cfg.PageSize),
		intsync.WithLogger(logger),
	)
	return v
}

// Open starts the conversation with t: resolves participant names, seeds the
// list from history and starts polling until Close is called or ctx is done.
// Opening an already open view switches it to t.
func (v *View) Open(ctx context.Context, t model.Target) error {
	if err := v.machine.Transition(status.Opening); err != nil {
		return err
	}

	v.stopPolling()
	v.mu.Lock()
	v.ctx = ctx
	v.open = true
	v.target = t
	v.targets = []model.Target{t}
	v.convID = conversation.ResolveID(v.cfg.UserID, t)
	v.msgs = nil
	v.historyPage = 0
	convID := v.convID
	v.mu.Unlock()

	v.names.Reset()
	v.names.Resolve(ctx, t)

	if _, err := v.LoadMore(ctx); err != nil {
		v.logger.Warn("history seed failed", zap.Error(err), zap.String("conversation_id", convID))
	}

	if err := ctx.Err(); err != nil {
		_ = v.machine.Transition(status.Error)
		return err
	}
	v.startPolling()
	return v.machine.Transition(status.Live)
}

// Switch moves an open view to another target, dropping the current list.
func (v *View) Switch(ctx context.Context, t model.Target) error {
	if !v.IsOpen() {
		return ErrClosed
	}
	return v.Open(ctx, t)
}

// SetTargets updates the active conversation targets. An empty list stops
// polling until targets return; a different first target switches the view.
func (v *View) SetTargets(ctx context.Context, targets []model.Target) error {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return ErrClosed
	}
	v.targets = slices.Clone(targets)
	current := v.target
	v.mu.Unlock()

	if len(targets) == 0 {
		v.stopPolling()
		return v.machine.Transition(status.Idle)
	}
	if targets[0] != current {
		return v.Open(ctx, targets[0])
	}
	v.startPolling()
	return v.machine.Transition(status.Live)
}

// Close stops polling, waits for in-flight sends and discards the list.
func (v *View) Close() {
	v.stopPolling()
	v.sender.Wait()

	v.mu.Lock()
	wasOpen := v.open
	v.open = false
	v.msgs = nil
	v.targets = nil
	v.mu.Unlock()

	v.names.Reset()
	if wasOpen {
		_ = v.machine.Transition(status.Closed)
	}
}

func (v *View) startPolling() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || v.handle != nil || len(v.targets) == 0 {
		return
	}
	v.handle = v.poller.Start(v.ctx)
	go v.superviseHandle(v.handle)
}

// superviseHandle clears h once its loop exits on its own, which happens when
// the context the view was opened with is done.
func (v *View) superviseHandle(h *intsync.Handle) {
	<-h.Done()

	v.mu.Lock()
	if v.handle != h {
		v.mu.Unlock()
		return
	}
	v.handle = nil
	open := v.open
	convID := v.convID
	v.mu.Unlock()

	if !open {
		return
	}
	v.logger.Warn("inbox polling stopped", zap.String("conversation_id", convID))
	if err := v.machine.Transition(status.Error); err != nil {
		v.logger.Debug("status not updated", zap.Error(err))
	}
}

// stopPolling must be called without v.mu held: Stop waits for an in-flight
// batch, and ingest takes v.mu.
func (v *View) stopPolling() {
	v.mu.Lock()
	h := v.handle
	v.handle = nil
	v.mu.Unlock()
	h.Stop()
}

// LoadMore fetches the next page of history and merges it. It returns the
// number of records the page carried.
func (v *View) LoadMore(ctx context.Context) (int, error) {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return 0, ErrClosed
	}
	page := v.historyPage + 1
	convID := v.convID
	v.mu.Unlock()

	records, err := v.api.History(ctx, convID, page, v.cfg.HistoryPageSize)
	if err != nil {
		return 0, fmt.Errorf("history page %d: %w", page, err)
	}

	v.mu.Lock()
	if v.convID == convID {
		v.historyPage = page
	}
	v.mu.Unlock()

	v.apply(convID, intsync.NormalizeBatch(records, v.cfg.UserID, convID, time.Now()))
	return len(records), nil
}

// ingest receives raw poll batches.
func (v *View) ingest(records []model.Record) {
	v.mu.Lock()
	target, convID, open := v.target, v.convID, v.open
	v.mu.Unlock()
	if !open {
		return
	}
	matching := conversation.Filter(v.cfg.UserID, target, records)
	if len(matching) == 0 {
		return
	}
	v.apply(convID, intsync.NormalizeBatch(matching, v.cfg.UserID, convID, time.Now()))
}

func (v *View) apply(convID string, incoming []model.Message) {
	if len(incoming) == 0 {
		return
	}
	for i := range incoming {
		incoming[i] = v.annotate(incoming[i])
	}

	added := 0
	v.mu.Lock()
	if v.convID == convID {
		before := len(v.msgs)
		list, rest := intsync.AbsorbEcho(v.msgs, incoming, v.cfg.EchoWindow)
		v.msgs = intsync.Merge(list, rest)
		added = len(v.msgs) - before + (len(incoming) - len(rest))
	}
	v.mu.Unlock()

	if added > 0 {
		v.bus.Emit(bus.KindMessageUpserted, bus.MessagesChanged{ConversationID: convID, Count: added})
	}
}

func (v *View) annotate(m model.Message) model.Message {
	if m.IsCurrentUser {
		m.SenderDisplayName = v.cfg.UserName
		return m
	}
	placeholder := m.SenderDisplayName
	if placeholder == model.UnknownSender {
		placeholder = ""
	}
	m.SenderDisplayName = v.names.Name(m.SenderID, placeholder)
	return m
}

// Send optimistically sends text to the current target and returns the
// placeholder id. The send outcome arrives on the bus.
func (v *View) Send(ctx context.Context, text string) (string, error) {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return "", ErrClosed
	}
	route := outbox.RouteFor(v.cfg.UserID, v.target)
	v.mu.Unlock()
	return v.sender.Send(ctx, route, text)
}

// Update applies fn to the message list atomically when conversationID is
// the open conversation.
func (v *View) Update(conversationID string, fn func([]model.Message) []model.Message) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || v.convID != conversationID {
		return false
	}
	v.msgs = fn(v.msgs)
	return true
}

// Messages returns a snapshot of the list, ascending by SentAt.
func (v *View) Messages() []model.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.msgs)
}

// Draft returns the compose box text.
func (v *View) Draft() string {
	v.draftMu.Lock()
	defer v.draftMu.Unlock()
	return v.draft
}

// SetDraft replaces the compose box text.
func (v *View) SetDraft(text string) {
	v.draftMu.Lock()
	defer v.draftMu.Unlock()
	v.draft = text
}

// Notify forwards a user-visible failure to the configured notifier.
func (v *View) Notify(err error) {
	if v.notifier != nil {
		v.notifier.Notify(err)
		return
	}
	v.logger.Warn("unhandled notification", zap.Error(err))
}

// ConversationID returns the key of the open conversation.
func (v *View) ConversationID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.convID
}

// Target returns the active conversation target.
func (v *View) Target() model.Target {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.target
}

// IsOpen reports whether the view is open.
func (v *View) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Polling reports whether the inbox poller is running.
func (v *View) Polling() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handle != nil
}

// Status returns the lifecycle state.
func (v *View) Status() status.State {
	return v.machine.Current()
}

// Refresh requests an immediate poll if polling is active.
func (v *View) Refresh() {
	v.mu.Lock()
	h := v.handle
	v.mu.Unlock()
	h.Trigger()
}
