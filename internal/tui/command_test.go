package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in        string
		name      string
		args      string
		canonical string
	}{
		{"dm u42", "dm", "u42", "dm"},
		{":group  g1 ", "group", "g1", "group"},
		{"MSG ops@fleet.example", "msg", "ops@fleet.example", "dm"},
		{"q", "q", "", "quit"},
		{"older", "older", "", "older"},
		{"launch now", "launch", "now", ""},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		cmd := ParseCommand(tt.in)
		if cmd.Name != tt.name || cmd.Args != tt.args {
			t.Errorf("ParseCommand(%q) = %+v, want name=%q args=%q", tt.in, cmd, tt.name, tt.args)
		}
		if got := cmd.Canonical(); got != tt.canonical {
			t.Errorf("ParseCommand(%q).Canonical() = %q, want %q", tt.in, got, tt.canonical)
		}
	}
}
