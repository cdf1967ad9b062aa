package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 2500 * time.Millisecond
	DefaultPageSize     = 50
)

// FetchFunc pulls at most limit records from the shared inbox.
type FetchFunc func(ctx context.Context, limit int) ([]model.Record, error)

// BatchFunc receives each successfully fetched batch.
type BatchFunc func(records []model.Record)

// Poller periodically pulls the inbox and hands each batch to a BatchFunc.
type Poller struct {
	fetch    FetchFunc
	onBatch  BatchFunc
	interval time.Duration
	pageSize int
	logger   *zap.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the time between polls.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPageSize sets the maximum number of records requested per poll.
func WithPageSize(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithLogger sets the logger used for swallowed fetch errors.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller creates a poller. It does nothing until Start is called.
func NewPoller(fetch FetchFunc, onBatch BatchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		onBatch:  onBatch,
		interval: DefaultPollInterval,
		pageSize: DefaultPageSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Start polls once immediately and then on every interval until the returned
// handle is stopped or ctx is done. Polls run one at a time on a single
// goroutine; ticks that fall due while a fetch is in flight are dropped.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:  cancel,
		done:    make(chan struct{}),
		trigger: make(chan struct{}, 1),
	}
	go p.loop(ctx, h)
	return h
}

func (p *Poller) loop(ctx context.Context, h *Handle) {
	defer close(h.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	p.poll(ctx, &failures)
	for {
		select {
		case <-ticker.C:
			p.poll(ctx, &failures)
		case <-h.trigger:
			p.poll(ctx, &failures)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context, failures *int) {
	if ctx.Err() != nil {
		return
	}
	records, err := p.fetch(ctx, p.pageSize)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		*failures++
		p.logger.Warn("inbox poll failed", zap.Error(err), zap.Int("consecutive_failures", *failures))
		return
	}
	if *failures > 0 {
		p.logger.Info("inbox poll recovered", zap.Int("after_failures", *failures))
		*failures = 0
	}
	if len(records) > 0 {
		p.onBatch(records)
	}
}

// Handle controls a running poller. The owner must call Stop exactly once it
// is done with the conversation; additional calls are no-ops.
type Handle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
	once    gosync.Once
}

// Stop cancels the poller and waits for the loop to exit. No batch is
// delivered after Stop returns.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Trigger requests an extra poll as soon as the loop is free.
func (h *Handle) Trigger() {
	if h == nil {
		return
	}
	select {
	case h.trigger <- struct{}{}:
	default:
	}
}

// Done is closed when the poller loop exits.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
