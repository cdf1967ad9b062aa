package conversation

import (
	"errors"
	"testing"

	"github.com/matheus3301/fleetchat/internal/model"
)

func TestResolveID(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		target model.Target
		want   string
	}{
		{"direct sorted", "u1", model.Target{ContactID: "u2"}, "dm:u1_u2"},
		{"direct reversed", "u2", model.Target{ContactID: "u1"}, "dm:u1_u2"},
		{"prefers contact id", "u1", model.Target{ID: "17", ContactID: "u9", Email: "a@b"}, "dm:u1_u9"},
		{"falls back to email", "u1", model.Target{ID: "17", Email: "pilot@fleet.io"}, "dm:pilot@fleet.io_u1"},
		{"falls back to local id", "u1", model.Target{ID: "17"}, "dm:17_u1"},
		{"group", "u1", model.Target{GroupID: "g1", ContactID: "u2"}, "group:g1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveID(tt.user, tt.target); got != tt.want {
				t.Errorf("ResolveID(%q, %+v) = %q, want %q", tt.user, tt.target, got, tt.want)
			}
		})
	}
}

func TestResolveIDIsDeterministic(t *testing.T) {
	target := model.Target{ID: "5", Email: "ops@fleet.io"}
	first := ResolveID("u1", target)
	for i := 0; i < 10; i++ {
		if got := ResolveID("u1", target); got != first {
			t.Fatalf("ResolveID changed between calls: %q != %q", got, first)
		}
	}
}

// The key computed from one client's session must equal the server-side
// dm:<sorted(A,B)> regardless of who initiated.
func TestResolveIDMatchesServerKey(t *testing.T) {
	pairs := [][2]string{{"alice", "bob"}, {"bob", "alice"}, {"u10", "u2"}}
	for _, p := range pairs {
		client := ResolveID(p[0], model.Target{ContactID: p[1]})
		server := DirectID(p[1], p[0])
		if client != server {
			t.Errorf("client key %q != server key %q", client, server)
		}
	}
}

func TestIsGroupID(t *testing.T) {
	if !IsGroupID("group:g1") {
		t.Error("group:g1 should be a group key")
	}
	if IsGroupID("dm:a_b") {
		t.Error("dm:a_b should not be a group key")
	}
}

func TestGroupIDOf(t *testing.T) {
	id, ok := GroupIDOf(GroupKey("g7"))
	if !ok || id != "g7" {
		t.Errorf("GroupIDOf(GroupKey(g7)) = %q, %v", id, ok)
	}
	if _, ok := GroupIDOf("dm:a_b"); ok {
		t.Error("dm key reported as group")
	}
}

func TestHasDirectParticipant(t *testing.T) {
	key := DirectID("alice", "bob")
	tests := []struct {
		user string
		want bool
	}{
		{"alice", true},
		{"bob", true},
		{"carol", false},
		{"ali", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasDirectParticipant(key, tt.user); got != tt.want {
			t.Errorf("HasDirectParticipant(%q, %q) = %v, want %v", key, tt.user, got, tt.want)
		}
	}
	if HasDirectParticipant("group:g1", "alice") {
		t.Error("group key matched a direct participant")
	}
}

func TestHasDirectParticipantRejectsAmbiguousKeys(t *testing.T) {
	tests := []struct {
		key, user string
	}{
		{"dm:a_b_c", "a_b"},
		{"dm:a_b_c", "a"},
		{"dm:a_b_c", "c"},
		{"dm:bob_alice", "alice"},
		{"dm:alice", "alice"},
	}
	for _, tt := range tests {
		if HasDirectParticipant(tt.key, tt.user) {
			t.Errorf("HasDirectParticipant(%q, %q) = true, want false", tt.key, tt.user)
		}
	}
}

func TestValidateParticipantID(t *testing.T) {
	for _, id := range []string{"u1", "alice@example.com", "crew-7"} {
		if err := ValidateParticipantID(id); err != nil {
			t.Errorf("ValidateParticipantID(%q) = %v", id, err)
		}
	}
	if err := ValidateParticipantID("a_b"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("ValidateParticipantID(a_b) = %v, want ErrAmbiguousID", err)
	}
}
