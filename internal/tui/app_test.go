package tui

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/fleetchat/internal/bus"
	"github.com/matheus3301/fleetchat/internal/chat"
	"github.com/matheus3301/fleetchat/internal/client"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"go.uber.org/zap"
)

// stubAPI answers every view and directory call from memory.
type stubAPI struct {
	mu       gosync.Mutex
	contacts []model.Contact
	sendErr  error
	sent     []client.SendRequest
}

func (s *stubAPI) Send(_ context.Context, req client.SendRequest) (client.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	if s.sendErr != nil {
		return client.SendResult{}, s.sendErr
	}
	return client.SendResult{MessageID: "srv-1", SentAt: model.Timestamp{Time: time.Now()}}, nil
}

func (s *stubAPI) Pull(context.Context, int) ([]model.Record, error) { return nil, nil }

func (s *stubAPI) History(context.Context, string, int, int) ([]model.Record, error) {
	return nil, nil
}

func (s *stubAPI) Group(_ context.Context, id string) (model.Group, error) {
	return model.Group{ID: id, Name: "Ramp"}, nil
}

func (s *stubAPI) Contacts(context.Context) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Contact(nil), s.contacts...), nil
}

func (s *stubAPI) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// testApp runs queued UI updates only when the test drains them.
type testApp struct {
	*App
	pending chan func()
}

// drain runs every queued UI update on the test goroutine.
func (ta *testApp) drain() {
	for {
		select {
		case fn := <-ta.pending:
			fn()
		default:
			return
		}
	}
}

func newTestApp(t *testing.T, api *stubAPI) (*testApp, *chat.View) {
	t.Helper()
	b := bus.New()
	flash := ui.NewFlashModel()
	view := chat.NewView(api, chat.Config{UserID: "u1", PollInterval: time.Hour}, b, zap.NewNop(), chat.WithNotifier(flash))
	t.Cleanup(view.Close)
	app := NewApp(Options{
		View:      view,
		Directory: api,
		Bus:       b,
		Flash:     flash,
		Logger:    zap.NewNop(),
		Profile:   ui.ProfileData{Profile: "main", UserID: "u1", DisplayName: "Alice"},
		Groups:    []model.Target{{GroupID: "g1", GroupName: "Ramp"}},
	})
	ta := &testApp{App: app, pending: make(chan func(), 256)}
	app.queue = func(fn func()) { ta.pending <- fn }
	return ta, view
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCommandOpensListedTarget(t *testing.T) {
	app, view := newTestApp(t, &stubAPI{})
	app.targets.Add(model.Target{ContactID: "u2", Name: "Bob Tech"})

	app.runCommand(ParseCommand("dm u2"))
	waitFor(t, "view open", view.IsOpen)

	if got := view.Target(); got.Name != "Bob Tech" {
		t.Errorf("opened %+v, want the listed contact", got)
	}
	if got := view.ConversationID(); got != "dm:u1_u2" {
		t.Errorf("conversation id = %q", got)
	}
	if app.pane != paneThread {
		t.Errorf("pane = %q, want thread", app.pane)
	}
}

func TestCommandGroupAddsTarget(t *testing.T) {
	app, view := newTestApp(t, &stubAPI{})

	app.runCommand(ParseCommand("group g9"))
	waitFor(t, "view open", view.IsOpen)

	if got := view.ConversationID(); got != "group:g9" {
		t.Errorf("conversation id = %q", got)
	}
	found := false
	for _, tg := range app.targets.Targets() {
		if tg.GroupID == "g9" {
			found = true
		}
	}
	if !found {
		t.Error("group not added to the crew list")
	}
}

func TestUnknownCommandWarns(t *testing.T) {
	app, _ := newTestApp(t, &stubAPI{})
	app.runCommand(ParseCommand("launch"))
	if m := app.flash.Get(); m == nil || m.Level != ui.FlashWarn {
		t.Errorf("flash = %+v, want warning", m)
	}
}

func TestSendWithoutConversationWarns(t *testing.T) {
	api := &stubAPI{}
	app, _ := newTestApp(t, api)
	app.send("tow request")
	if api.sendCount() != 0 {
		t.Error("send reached the API with no conversation open")
	}
	if m := app.flash.Get(); m == nil || m.Level != ui.FlashWarn {
		t.Errorf("flash = %+v, want warning", m)
	}
}

func TestSendClearsComposer(t *testing.T) {
	api := &stubAPI{}
	app, view := newTestApp(t, api)
	app.runCommand(ParseCommand("dm u2"))
	waitFor(t, "view open", view.IsOpen)

	app.thread.Composer().SetText("fuel truck to stand 4")
	if got := view.Draft(); got != "fuel truck to stand 4" {
		t.Fatalf("draft = %q, composer edits not mirrored", got)
	}
	app.send("fuel truck to stand 4")
	if got := app.thread.Composer().GetText(); got != "" {
		t.Errorf("composer = %q after send", got)
	}
	waitFor(t, "send", func() bool { return api.sendCount() == 1 })
}

func TestSendFailureRestoresComposer(t *testing.T) {
	api := &stubAPI{sendErr: errors.New("status 503")}
	app, view := newTestApp(t, api)
	app.runCommand(ParseCommand("dm u2"))
	waitFor(t, "view open", view.IsOpen)

	app.send("gpu on")
	waitFor(t, "rollback", func() bool { return view.Draft() == "gpu on" && app.flash.Get() != nil })

	app.onEvent(bus.Event{Kind: bus.KindMessageSendFailed})
	if got := app.thread.Composer().GetText(); got != "gpu on" {
		t.Errorf("composer = %q, want restored draft", got)
	}
	if m := app.flash.Get(); m == nil || m.Level != ui.FlashErr {
		t.Errorf("flash = %+v, want error", m)
	}
}

func TestHandleKeyDispatch(t *testing.T) {
	app, _ := newTestApp(t, &stubAPI{})

	if ev := app.handleKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)); ev != nil {
		t.Error("tab not consumed")
	}
	if app.pane != paneThread {
		t.Errorf("pane = %q after tab", app.pane)
	}

	app.handleKey(tcell.NewEventKey(tcell.KeyRune, '?', tcell.ModNone))
	if app.pages.Current() != pageHelp {
		t.Fatalf("page = %q, want help", app.pages.Current())
	}
	if ev := app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)); ev == nil {
		t.Error("overlay pages should not dispatch global keys")
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if app.pages.Current() != pageMain {
		t.Errorf("page = %q after Esc, want main", app.pages.Current())
	}
}

func TestLoadContactsSkipsSelf(t *testing.T) {
	api := &stubAPI{contacts: []model.Contact{
		{ContactID: "u1", Name: "Alice"},
		{ContactID: "u2", Name: "Bob"},
	}}
	app, _ := newTestApp(t, api)

	app.loadContacts()
	app.drain()
	for _, tg := range app.targets.Targets() {
		if tg.ContactID == "u1" {
			t.Error("current user listed as a contact")
		}
	}
	if n := len(app.targets.Targets()); n != 2 {
		t.Errorf("targets = %d, want group + Bob", n)
	}
}
