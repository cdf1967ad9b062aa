package tui

import "strings"

// Command represents a parsed ":" command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	name, args, _ := strings.Cut(input, " ")
	return Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
}

// command names and their aliases.
var commandAliases = map[string]string{
	"dm":      "dm",
	"msg":     "dm",
	"group":   "group",
	"g":       "group",
	"older":   "older",
	"more":    "older",
	"refresh": "refresh",
	"invite":  "invite",
	"info":    "info",
	"help":    "help",
	"h":       "help",
	"close":   "close",
	"quit":    "quit",
	"q":       "quit",
}

// Canonical returns the command's canonical name, or "" if it is unknown.
func (c Command) Canonical() string {
	return commandAliases[c.Name]
}
