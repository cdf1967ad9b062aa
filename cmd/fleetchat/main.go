package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/matheus3301/fleetchat/internal/bus"
	"github.com/matheus3301/fleetchat/internal/chat"
	"github.com/matheus3301/fleetchat/internal/client"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/logging"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/profile"
	"github.com/matheus3301/fleetchat/internal/tui"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"go.uber.org/zap"
)

// groupList collects repeated --group flags.
type groupList []string

func (g *groupList) String() string { return strings.Join(*g, ",") }

func (g *groupList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*g = append(*g, v)
	}
	return nil
}

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	contactFlag := flag.String("contact", "", "open a direct conversation with this contact id or email")
	var groups groupList
	flag.Var(&groups, "group", "list a group id; the first one is opened unless --contact is set (repeatable)")
	flag.Parse()

	if err := run(*profileFlag, *contactFlag, groups); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(profileName, contact string, groups []string) error {
	s, err := profile.Load(profileName)
	if err != nil {
		return err
	}
	if err := s.RequireUser(); err != nil {
		return err
	}
	if err := profile.EnsureDir(s.Name); err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to the file only.
	logger, err := logging.NewFileOnly(profile.LogPath(s.Name, "fleetchat"), s.Name)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.New(s.BaseURL, s.UserID,
		client.WithToken(s.Token),
		client.WithTimeout(s.RequestTimeout.Duration),
	)
	if err != nil {
		return err
	}

	b := bus.New()
	flash := ui.NewFlashModel()
	view := chat.NewView(c, chat.Config{
		UserID:          s.UserID,
		UserName:        s.DisplayName,
		PollInterval:    s.PollInterval.Duration,
		PageSize:        s.PageSize,
		HistoryPageSize: s.HistoryPageSize,
		RequestTimeout:  s.RequestTimeout.Duration,
		EchoWindow:      s.EchoWindow.Duration,
	}, b, logger, chat.WithNotifier(flash))

	var groupTargets []model.Target
	for _, id := range groups {
		groupTargets = append(groupTargets, model.Target{GroupID: id})
	}
	var initial model.Target
	switch {
	case contact != "":
		initial = conversation.ParseTarget(contact)
	case len(groupTargets) > 0:
		initial = groupTargets[0]
	}

	logger.Info("starting chat client",
		zap.String("base_url", s.BaseURL),
		zap.String("user_id", s.UserID),
		zap.Int("groups", len(groupTargets)))

	app := tui.NewApp(tui.Options{
		View:      view,
		Directory: c,
		Bus:       b,
		Flash:     flash,
		Logger:    logger,
		Profile: ui.ProfileData{
			Profile:     s.Name,
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			Email:       s.Email,
			BaseURL:     s.BaseURL,
		},
		Groups:  groupTargets,
		Initial: initial,
	})
	return app.Run()
}
