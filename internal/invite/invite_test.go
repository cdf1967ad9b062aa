package invite

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinkRoundTrip(t *testing.T) {
	link := Link("u42", "Dana Crew", "dana@fleet.example")
	if !strings.HasPrefix(link, "fleetchat://contact/u42?") {
		t.Fatalf("link = %q", link)
	}
	c, err := Parse(link)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.ContactID != "u42" || c.Name != "Dana Crew" || c.Email != "dana@fleet.example" {
		t.Errorf("contact = %+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []string{
		"https://example.com/contact/u1",
		"fleetchat://group/g1",
		"fleetchat://contact/",
	}
	for _, in := range tests {
		if _, err := Parse(in); !errors.Is(err, ErrNotInvite) {
			t.Errorf("Parse(%q) error = %v, want ErrNotInvite", in, err)
		}
	}
}

func TestRender(t *testing.T) {
	out, err := Render(Link("u1", "", ""))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("only %d lines rendered", len(lines))
	}
	if !strings.ContainsRune(out, '█') {
		t.Error("no full blocks in rendered code")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invite.png")
	if err := WritePNG(Link("u1", "", ""), path, 128); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
