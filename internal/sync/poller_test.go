package sync

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
)

type fakeInbox struct {
	calls   atomic.Int32
	limit   atomic.Int32
	failFor int32
	delay   time.Duration

	mu      gosync.Mutex
	active  int
	overlap bool
}

func (f *fakeInbox) fetch(ctx context.Context, limit int) ([]model.Record, error) {
	n := f.calls.Add(1)
	f.limit.Store(int32(limit))

	f.mu.Lock()
	f.active++
	if f.active > 1 {
		f.overlap = true
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= f.failFor {
		return nil, errors.New("connection refused")
	}
	return []model.Record{{ID: "m1"}}, nil
}

func TestPollerPollsImmediately(t *testing.T) {
	inbox := &fakeInbox{}
	batches := make(chan []model.Record, 10)
	p := NewPoller(inbox.fetch, func(r []model.Record) { batches <- r }, WithInterval(time.Hour))

	h := p.Start(context.Background())
	defer h.Stop()

	select {
	case b := <-batches:
		if len(b) != 1 || b[0].ID != "m1" {
			t.Errorf("batch = %+v", b)
		}
	case <-time.After(time.Second):
		t.Fatal("no immediate poll")
	}
	if got := inbox.limit.Load(); got != DefaultPageSize {
		t.Errorf("limit = %d, want %d", got, DefaultPageSize)
	}
}

func TestPollerSurvivesFailures(t *testing.T) {
	inbox := &fakeInbox{failFor: 3}
	batches := make(chan []model.Record, 10)
	p := NewPoller(inbox.fetch, func(r []model.Record) { batches <- r }, WithInterval(10*time.Millisecond), WithPageSize(5))

	h := p.Start(context.Background())
	defer h.Stop()

	select {
	case <-batches:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not recover after failures")
	}
	if got := inbox.calls.Load(); got < 4 {
		t.Errorf("calls = %d, want >= 4", got)
	}
	if got := inbox.limit.Load(); got != 5 {
		t.Errorf("limit = %d, want 5", got)
	}
}

func TestPollerStopTearsDownTimer(t *testing.T) {
	inbox := &fakeInbox{}
	p := NewPoller(inbox.fetch, func([]model.Record) {}, WithInterval(10*time.Millisecond))

	h := p.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	h.Stop()

	after := inbox.calls.Load()
	time.Sleep(60 * time.Millisecond)
	if got := inbox.calls.Load(); got != after {
		t.Errorf("calls after Stop = %d, want %d", got, after)
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done not closed after Stop")
	}

	// Stop is idempotent.
	h.Stop()
}

func TestPollerStopsWithContext(t *testing.T) {
	inbox := &fakeInbox{}
	p := NewPoller(inbox.fetch, func([]model.Record) {}, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	h := p.Start(ctx)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not exit on context cancel")
	}
}

func TestPollerNeverOverlaps(t *testing.T) {
	inbox := &fakeInbox{delay: 30 * time.Millisecond}
	p := NewPoller(inbox.fetch, func([]model.Record) {}, WithInterval(5*time.Millisecond))

	h := p.Start(context.Background())
	for i := 0; i < 5; i++ {
		h.Trigger()
		time.Sleep(10 * time.Millisecond)
	}
	h.Stop()

	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	if inbox.overlap {
		t.Error("two polls were in flight at once")
	}
}

func TestPollerNoBatchAfterStop(t *testing.T) {
	inbox := &fakeInbox{delay: 50 * time.Millisecond}
	var delivered atomic.Int32
	p := NewPoller(inbox.fetch, func([]model.Record) { delivered.Add(1) }, WithInterval(time.Hour))

	h := p.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	time.Sleep(80 * time.Millisecond)

	if got := delivered.Load(); got != 0 {
		t.Errorf("delivered %d batches after Stop, want 0", got)
	}
}
