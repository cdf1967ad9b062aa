// Package tui is the terminal chat client: a crew list, the open
// conversation's thread with a composer, and a status bar.
package tui

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/fleetchat/internal/bus"
	"github.com/matheus3301/fleetchat/internal/chat"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/tui/keys"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/matheus3301/fleetchat/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page and pane names.
const (
	pageMain   = "main"
	pageHelp   = "help"
	pageInvite = "invite"
	pageInfo   = "info"

	paneTargets = "targets"
	paneThread  = "thread"
)

// Directory is what the app reads the crew list and group members from.
type Directory interface {
	Contacts(ctx context.Context) ([]model.Contact, error)
	Group(ctx context.Context, groupID string) (model.Group, error)
}

// Options wires an App.
type Options struct {
	View      *chat.View
	Directory Directory
	Bus       *bus.Bus
	// Flash must be the notifier the view was built with so send failures
	// show up in the status bar.
	Flash   *ui.FlashModel
	Logger  *zap.Logger
	Profile ui.ProfileData
	// Groups are listed alongside contacts; there is no group directory endpoint.
	Groups  []model.Target
	Initial model.Target
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	registry *keys.Registry

	profileInfo *ui.ProfileInfo
	menu        *ui.Menu
	prompt      *ui.Prompt
	layout      *tview.Flex
	targets     *views.TargetList
	thread      *views.MessageThread
	info        *views.ConversationInfo
	help        *views.HelpView
	invite      *views.InviteView
	statusBar   *views.StatusBar

	view    *chat.View
	dir     Directory
	bus     *bus.Bus
	flash   *ui.FlashModel
	logger  *zap.Logger
	profile ui.ProfileData
	initial model.Target

	pane string
	// queue runs fn on the UI goroutine.
	queue  func(fn func())
	openMu gosync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Flash == nil {
		opts.Flash = ui.NewFlashModel()
	}

	a := &App{
		app:         tview.NewApplication(),
		theme:       theme,
		pages:       ui.NewPages(),
		registry:    keys.NewRegistry(),
		profileInfo: ui.NewProfileInfo(theme),
		menu:        ui.NewMenu(theme),
		prompt:      ui.NewPrompt(theme),
		targets:     views.NewTargetList(theme),
		thread:      views.NewMessageThread(theme),
		info:        views.NewConversationInfo(theme),
		help:        views.NewHelpView(theme),
		invite:      views.NewInviteView(theme),
		statusBar:   views.NewStatusBar(theme),
		view:        opts.View,
		dir:         opts.Directory,
		bus:         opts.Bus,
		flash:       opts.Flash,
		logger:      opts.Logger,
		profile:     opts.Profile,
		initial:     opts.Initial,
		pane:        paneTargets,
		ctx:         ctx,
		cancel:      cancel,
	}

	a.queue = func(fn func()) { a.app.QueueUpdateDraw(fn) }

	a.profileInfo.Update(opts.Profile)
	a.statusBar.SetProfile(opts.Profile.Profile)
	a.targets.Update(opts.Groups)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	global := []struct {
		name   string
		action *keys.Action
	}{
		{"quit", &keys.Action{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Quit", Visible: true, Handler: a.Stop}},
		{"command", &keys.Action{Key: tcell.KeyRune, Rune: ':', Label: ":", Description: "Command", Visible: true, Handler: func() { a.showPrompt(ui.PromptCommand) }}},
		{"filter", &keys.Action{Key: tcell.KeyRune, Rune: '/', Label: "/", Description: "Filter", Handler: func() { a.showPrompt(ui.PromptFilter) }}},
		{"help", &keys.Action{Key: tcell.KeyRune, Rune: '?', Label: "?", Description: "Help", Visible: true, Handler: func() { a.pushPage(pageHelp) }}},
		{"invite", &keys.Action{Key: tcell.KeyRune, Rune: 'I', Label: "I", Description: "Invite", Handler: a.showInvite}},
		{"older", &keys.Action{Key: tcell.KeyRune, Rune: 'L', Label: "L", Description: "Older", Visible: true, Handler: a.loadOlder}},
		{"refresh", &keys.Action{Key: tcell.KeyRune, Rune: 'r', Label: "r", Description: "Poll", Handler: a.view.Refresh}},
		{"details", &keys.Action{Key: tcell.KeyRune, Rune: 'd', Label: "d", Description: "Details", Handler: a.showInfo}},
		{"switch", &keys.Action{Key: tcell.KeyTab, Label: "Tab", Description: "Pane", Visible: true, Handler: a.togglePane}},
	}
	for _, g := range global {
		a.registry.AddGlobal(g.name, g.action)
	}
	a.registry.AddView(paneThread, "compose", &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Label: "i", Description: "Compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddView(paneTargets, "open", &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Open", Visible: true,
		Handler: func() {
			if t, ok := a.targets.Selected(); ok {
				a.open(t)
			}
		},
	})
}

func (a *App) setupCallbacks() {
	a.targets.SetOnSelect(a.open)
	a.thread.SetOnDraft(a.view.SetDraft)
	a.thread.SetOnSend(a.send)

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.targets.SetFilter(text)
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptCommand {
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.targets.SetFilter("")
		}
		a.hidePrompt()
	})
	a.pages.SetOnChange(func(string) { a.updateMenu() })
}

func (a *App) setupLayout() {
	body := tview.NewFlex().
		AddItem(a.targets, 40, 0, true).
		AddItem(a.thread, 0, 1, false)

	a.pages.AddPage(pageMain, body, true, true)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.AddPage(pageInvite, a.invite, true, false)
	a.pages.AddPage(pageInfo, a.info, true, false)
	a.pages.Reset(pageMain)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.profileInfo, 5, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.menu, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.layout, true)
	a.app.SetInputCapture(a.handleKey)
	a.updateMenu()
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	focused := a.app.GetFocus()
	switch focused {
	case a.prompt.InputField:
		return ev
	case a.thread.Composer():
		if ev.Key() == tcell.KeyEscape {
			a.focusPane(paneThread)
			return nil
		}
		return ev
	}

	if ev.Key() == tcell.KeyEscape && a.pages.Pop() != "" {
		a.focusPane(a.pane)
		return nil
	}
	if a.pages.Current() != pageMain {
		return ev
	}
	if a.registry.HandleEvent(a.pane, ev) {
		return nil
	}
	return ev
}

func (a *App) focusPane(pane string) {
	a.pane = pane
	switch pane {
	case paneThread:
		a.app.SetFocus(a.thread.Messages())
	default:
		a.app.SetFocus(a.targets)
	}
	a.updateMenu()
}

func (a *App) togglePane() {
	if a.pane == paneTargets {
		a.focusPane(paneThread)
		return
	}
	a.focusPane(paneTargets)
}

func (a *App) pushPage(name string) {
	a.pages.Push(name)
	switch name {
	case pageHelp:
		a.app.SetFocus(a.help)
	case pageInvite:
		a.app.SetFocus(a.invite)
	case pageInfo:
		a.app.SetFocus(a.info)
	}
}

func (a *App) updateMenu() {
	if a.pages.Current() != pageMain {
		a.menu.Update([]ui.MenuHint{{Key: "Esc", Description: "Back"}})
		return
	}
	a.menu.Update(a.registry.Hints(a.pane))
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.layout.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.layout.ResizeItem(a.prompt, 0, 0)
	a.focusPane(a.pane)
}

// open switches the view to t. The view is opened off the UI goroutine since
// it fetches names and history.
func (a *App) open(t model.Target) {
	if a.view.IsOpen() && a.view.Target() == t {
		a.focusPane(paneThread)
		return
	}
	a.targets.SetActive(t)
	a.thread.SetConversation(t.Label(), conversation.ResolveID(a.profile.UserID, t))
	a.thread.Update(nil)
	a.focusPane(paneThread)

	go func() {
		a.openMu.Lock()
		defer a.openMu.Unlock()
		if err := a.view.Open(a.ctx, t); err != nil {
			a.logger.Warn("open conversation failed", zap.Error(err), zap.String("target", t.Label()))
			a.flash.Err(err)
		}
		a.queue(a.refresh)
	}()
}

func (a *App) send(text string) {
	if _, err := a.view.Send(a.ctx, text); err != nil {
		if errors.Is(err, chat.ErrClosed) {
			a.flash.Warn("Open a conversation first")
		} else {
			a.flash.Notify(err)
		}
		a.refreshStatus()
		return
	}
	a.thread.SetDraft(a.view.Draft())
	a.refresh()
}

func (a *App) loadOlder() {
	go func() {
		n, err := a.view.LoadMore(a.ctx)
		switch {
		case err != nil:
			a.flash.Err(err)
		case n == 0:
			a.flash.Info("No older messages")
		default:
			a.flash.Info(fmt.Sprintf("Loaded %d older messages", n))
		}
		a.queue(a.refresh)
	}()
}

func (a *App) closeConversation() {
	go func() {
		a.openMu.Lock()
		defer a.openMu.Unlock()
		a.view.Close()
		a.queue(func() {
			a.targets.SetActive(model.Target{})
			a.thread.SetConversation("No conversation", "")
			a.refresh()
			a.focusPane(paneTargets)
		})
	}()
}

func (a *App) showInvite() {
	a.invite.Show(a.profile.UserID, a.profile.DisplayName, a.profile.Email)
	a.pushPage(pageInvite)
}

func (a *App) showInfo() {
	if !a.view.IsOpen() {
		a.flash.Warn("No conversation open")
		a.refreshStatus()
		return
	}
	t := a.view.Target()
	details := a.details(t, nil)
	a.info.Update(details)
	a.pushPage(pageInfo)

	if !t.IsGroup() {
		return
	}
	go func() {
		g, err := a.dir.Group(a.ctx, t.GroupID)
		if err != nil {
			a.logger.Warn("group lookup failed", zap.Error(err), zap.String("group_id", t.GroupID))
			return
		}
		a.queue(func() {
			if g.Name != "" && t.GroupName == "" {
				t.GroupName = g.Name
			}
			a.info.Update(a.details(t, g.Members))
		})
	}()
}

func (a *App) details(t model.Target, members []model.Member) views.ConversationDetails {
	msgs := a.view.Messages()
	pending := 0
	for _, m := range msgs {
		if m.IsPlaceholder() {
			pending++
		}
	}
	return views.ConversationDetails{
		Target:         t,
		ConversationID: a.view.ConversationID(),
		Messages:       len(msgs),
		Pending:        pending,
		Members:        members,
	}
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Canonical() {
	case "dm":
		if cmd.Args == "" {
			a.flash.Warn("usage: :dm <contact id or email>")
			break
		}
		t := a.lookup(conversation.ParseTarget(cmd.Args))
		a.targets.Add(t)
		a.open(t)
	case "group":
		if cmd.Args == "" {
			a.flash.Warn("usage: :group <group id>")
			break
		}
		t := a.lookup(model.Target{GroupID: cmd.Args})
		a.targets.Add(t)
		a.open(t)
	case "older":
		a.loadOlder()
	case "refresh":
		a.view.Refresh()
	case "invite":
		a.showInvite()
	case "info":
		a.showInfo()
	case "help":
		a.pushPage(pageHelp)
	case "close":
		a.closeConversation()
	case "quit":
		a.Stop()
	default:
		a.flash.Warn(fmt.Sprintf("unknown command %q", cmd.Name))
	}
	a.refreshStatus()
}

// lookup returns the listed target equal to t by id or email, else t itself.
func (a *App) lookup(t model.Target) model.Target {
	for _, have := range a.targets.Targets() {
		switch {
		case t.IsGroup() && have.GroupID == t.GroupID:
			return have
		case !t.IsGroup() && !have.IsGroup() && t.ContactID != "" && have.ContactID == t.ContactID:
			return have
		case !t.IsGroup() && !have.IsGroup() && t.Email != "" && have.Email == t.Email:
			return have
		}
	}
	return t
}

func (a *App) loadContacts() {
	list, err := a.dir.Contacts(a.ctx)
	if err != nil {
		a.logger.Warn("contacts load failed", zap.Error(err))
		a.flash.Warn("Could not load crew list")
		a.queue(a.refreshStatus)
		return
	}
	a.queue(func() {
		for _, c := range list {
			if c.ContactID == a.profile.UserID {
				continue
			}
			a.targets.Add(c.Target())
		}
	})
}

// refresh redraws the thread and status bar from the view. It must run on
// the UI goroutine.
func (a *App) refresh() {
	a.thread.Update(a.view.Messages())
	a.refreshStatus()
}

func (a *App) refreshStatus() {
	label := ""
	if a.view.IsOpen() {
		label = a.view.Target().Label()
	}
	a.statusBar.SetView(a.view.Status(), label, a.view.Polling())
	a.statusBar.SetFlash(a.flash.Get())
}

func (a *App) onEvent(evt bus.Event) {
	if evt.Kind == bus.KindMessageSendFailed {
		a.thread.SetDraft(a.view.Draft())
	}
	a.refresh()
}

func (a *App) watch() {
	events, unsubscribe := a.bus.Subscribe("", 64)
	defer unsubscribe()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-events:
			a.queue(func() { a.onEvent(evt) })
		case <-a.flash.Watch():
			a.queue(a.refreshStatus)
		case <-ticker.C:
			a.queue(a.refreshStatus)
		case <-a.ctx.Done():
			return
		}
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	go a.watch()
	go a.loadContacts()
	if a.initial != (model.Target{}) {
		a.targets.Add(a.initial)
		a.open(a.initial)
	}
	err := a.app.Run()
	a.cancel()
	a.view.Close()
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
