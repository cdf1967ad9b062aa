package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/fleetchat/internal/client"
	"github.com/matheus3301/fleetchat/internal/config"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/invite"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/outbox"
	"github.com/matheus3301/fleetchat/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	s, err := profile.Load(*profileFlag)
	if err != nil {
		fail(err)
	}

	// config and conversation-id never talk to the server.
	switch args[0] {
	case "config":
		cmdConfig(s, args[1:])
		return
	case "conversation-id":
		cmdConversationID(s, args[1:], *jsonFlag)
		return
	case "invite":
		cmdInvite(s, args[1:], *jsonFlag)
		return
	}

	if err := s.RequireUser(); err != nil {
		fail(err)
	}
	c, err := client.New(s.BaseURL, s.UserID,
		client.WithToken(s.Token),
		client.WithTimeout(s.RequestTimeout.Duration),
	)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.RequestTimeout.Duration+5*time.Second)
	defer cancel()

	switch args[0] {
	case "send":
		cmdSend(ctx, c, s, args[1:], *jsonFlag)
	case "pull":
		cmdPull(ctx, c, s, args[1:], *jsonFlag)
	case "history":
		cmdHistory(ctx, c, s, args[1:], *jsonFlag)
	case "contacts":
		cmdContacts(ctx, c, *jsonFlag)
	case "group":
		cmdGroup(ctx, c, args[1:], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: fleetchatctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "targets are a contact id, an email, or group:<id>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  send <target> <text>              Send a message")
	fmt.Fprintln(os.Stderr, "  pull [limit]                      Drain the inbox once")
	fmt.Fprintln(os.Stderr, "  history <target> [page] [size]    Show a page of a conversation")
	fmt.Fprintln(os.Stderr, "  contacts                          List the contact directory")
	fmt.Fprintln(os.Stderr, "  group <id>                        Show a group and its members")
	fmt.Fprintln(os.Stderr, "  conversation-id <target>          Print the conversation key")
	fmt.Fprintln(os.Stderr, "  invite [--out file.png]           Show my invite code")
	fmt.Fprintln(os.Stderr, "  config show                       Print the active profile")
	fmt.Fprintln(os.Stderr, "  config set <key> <value>          Set a profile field in config.toml")
	fmt.Fprintln(os.Stderr, "  config default                    Make this profile the default")
}

func cmdSend(ctx context.Context, c *client.Client, s profile.Settings, args []string, jsonOut bool) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fleetchatctl send <target> <text>")
		os.Exit(1)
	}
	target := conversation.ParseTarget(args[0])
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		fail(outbox.ErrEmptyText)
	}

	res, err := c.Send(ctx, outbox.RouteFor(s.UserID, target).Request(text))
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(res)
		return
	}
	fmt.Printf("Sent %s at %s\n", res.MessageID, res.SentAt.Format(time.RFC3339))
}

func cmdPull(ctx context.Context, c *client.Client, s profile.Settings, args []string, jsonOut bool) {
	limit := s.PageSize
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fail(fmt.Errorf("invalid limit %q", args[0]))
		}
		limit = n
	}
	records, err := c.Pull(ctx, limit)
	if err != nil {
		fail(err)
	}
	printRecords(records, jsonOut)
}

func cmdHistory(ctx context.Context, c *client.Client, s profile.Settings, args []string, jsonOut bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fleetchatctl history <target> [page] [size]")
		os.Exit(1)
	}
	page, size := 1, s.HistoryPageSize
	var err error
	if len(args) > 1 {
		if page, err = strconv.Atoi(args[1]); err != nil || page < 1 {
			fail(fmt.Errorf("invalid page %q", args[1]))
		}
	}
	if len(args) > 2 {
		if size, err = strconv.Atoi(args[2]); err != nil || size < 1 {
			fail(fmt.Errorf("invalid page size %q", args[2]))
		}
	}
	convID := conversation.ResolveID(s.UserID, conversation.ParseTarget(args[0]))
	records, err := c.History(ctx, convID, page, size)
	if err != nil {
		fail(err)
	}
	printRecords(records, jsonOut)
}

func cmdContacts(ctx context.Context, c *client.Client, jsonOut bool) {
	list, err := c.Contacts(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(list)
		return
	}
	if len(list) == 0 {
		fmt.Println("No contacts.")
		return
	}
	for _, ct := range list {
		fmt.Printf("%-20s %-28s %s\n", ct.ContactID, ct.DisplayName(), ct.Email)
	}
}

func cmdGroup(ctx context.Context, c *client.Client, args []string, jsonOut bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fleetchatctl group <id>")
		os.Exit(1)
	}
	g, err := c.Group(ctx, args[0])
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(g)
		return
	}
	fmt.Printf("Group:   %s (%s)\n", g.Name, g.ID)
	fmt.Printf("Members: %d\n", len(g.Members))
	for _, m := range g.Members {
		fmt.Printf("  %-20s %-28s %s\n", m.UserID, m.FullName(), m.Email)
	}
}

func cmdConversationID(s profile.Settings, args []string, jsonOut bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fleetchatctl conversation-id <target>")
		os.Exit(1)
	}
	if err := s.RequireUser(); err != nil {
		fail(err)
	}
	id := conversation.ResolveID(s.UserID, conversation.ParseTarget(args[0]))
	if jsonOut {
		outputJSON(map[string]string{"conversationId": id})
		return
	}
	fmt.Println(id)
}

func cmdInvite(s profile.Settings, args []string, jsonOut bool) {
	fs := flag.NewFlagSet("invite", flag.ExitOnError)
	out := fs.String("out", "", "write the code as a PNG file instead of printing it")
	size := fs.Int("size", 256, "PNG size in pixels")
	_ = fs.Parse(args)

	if err := s.RequireUser(); err != nil {
		fail(err)
	}
	link := invite.Link(s.UserID, s.DisplayName, s.Email)
	switch {
	case jsonOut:
		outputJSON(map[string]string{"link": link})
	case *out != "":
		if err := invite.WritePNG(link, *out, *size); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", *out)
	default:
		code, err := invite.Render(link)
		if err != nil {
			fail(err)
		}
		fmt.Print(code)
		fmt.Println(link)
	}
}

func cmdConfig(s profile.Settings, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: fleetchatctl config <show|set|default>")
		os.Exit(1)
	}
	path := profile.ConfigPath()
	switch args[0] {
	case "show":
		p := s.Profile
		if p.Token != "" {
			p.Token = "********"
		}
		outputJSON(struct {
			Name string `json:"name"`
			config.Profile
		}{s.Name, p})
	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: fleetchatctl config set <key> <value>")
			os.Exit(1)
		}
		cfg, err := config.LoadOrEmpty(path)
		if err != nil {
			fail(err)
		}
		p := cfg.Profiles[s.Name]
		if err := setField(&p, args[1], args[2]); err != nil {
			fail(err)
		}
		cfg.SetProfile(s.Name, p)
		if err := profile.EnsureDir(s.Name); err != nil {
			fail(err)
		}
		if err := config.Save(path, cfg); err != nil {
			fail(err)
		}
		fmt.Printf("Set %s for profile %q\n", args[1], s.Name)
	case "default":
		cfg, err := config.LoadOrEmpty(path)
		if err != nil {
			fail(err)
		}
		cfg.DefaultProfile = s.Name
		if err := config.Save(path, cfg); err != nil {
			fail(err)
		}
		fmt.Printf("Default profile is now %q\n", s.Name)
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func setField(p *config.Profile, key, value string) error {
	str := map[string]*string{
		"base_url":     &p.BaseURL,
		"user_id":      &p.UserID,
		"email":        &p.Email,
		"display_name": &p.DisplayName,
		"token":        &p.Token,
	}
	if dst, ok := str[key]; ok {
		*dst = value
		return nil
	}
	ints := map[string]*int{
		"page_size":         &p.PageSize,
		"history_page_size": &p.HistoryPageSize,
	}
	if dst, ok := ints[key]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	durations := map[string]*config.Duration{
		"poll_interval":   &p.PollInterval,
		"request_timeout": &p.RequestTimeout,
		"echo_window":     &p.EchoWindow,
	}
	if dst, ok := durations[key]; ok {
		if err := dst.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("unknown config key %q", key)
}

func printRecords(records []model.Record, jsonOut bool) {
	if jsonOut {
		outputJSON(records)
		return
	}
	if len(records) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, r := range records {
		name := r.SenderName
		if name == "" {
			name = r.SenderID
		}
		fmt.Printf("%s  %-24s %s\n", r.SentAt.Local().Format("2006-01-02 15:04"), name, r.Content)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
