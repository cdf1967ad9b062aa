package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUsers(t *testing.T, db *DB, users ...User) {
	t.Helper()
	for i := range users {
		if err := db.UpsertUser(context.Background(), &users[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2 (init + inbox index)", result.Version)
	}
}

func TestRollbackAndReapply(t *testing.T) {
	db := testDB(t)

	result, err := db.Rollback()
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if !result.Changed || result.Version != 1 {
		t.Errorf("after rollback = %+v, want version 1", result)
	}

	result, err = db.Migrate()
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !result.Changed || result.Version != 2 {
		t.Errorf("after reapply = %+v, want version 2", result)
	}
}

func TestOpenMemory(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	n, err := db.UserCount(context.Background())
	if err != nil || n != 0 {
		t.Errorf("UserCount() = %d, %v", n, err)
	}
}

func TestUserUpsertKeepsFields(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedUsers(t, db, User{ID: "u1", Email: "Dana@Fleet.example", FirstName: "Dana"})

	if err := db.UpsertUser(ctx, &User{ID: "u1", LastName: "Crew"}); err != nil {
		t.Fatal(err)
	}
	u, err := db.GetUser(ctx, "u1")
	if err != nil || u == nil {
		t.Fatalf("GetUser() = %v, %v", u, err)
	}
	if u.FullName() != "Dana Crew" || u.Email != "dana@fleet.example" {
		t.Errorf("user = %+v", u)
	}

	byEmail, err := db.UserByEmail(ctx, "DANA@fleet.example")
	if err != nil || byEmail == nil || byEmail.ID != "u1" {
		t.Errorf("UserByEmail() = %+v, %v", byEmail, err)
	}

	missing, err := db.GetUser(ctx, "nobody")
	if err != nil || missing != nil {
		t.Errorf("GetUser(nobody) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestListContactsFallsBackToUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedUsers(t, db, User{ID: "u2", FirstName: "Eli", LastName: "Ramp", Email: "eli@fleet.example"})

	if err := db.UpsertContact(ctx, "u1", model.Contact{ContactID: "u2"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertContact(ctx, "u1", model.Contact{ContactID: "u3", Name: "Ops desk", Phone: "+1555"}); err != nil {
		t.Fatal(err)
	}

	contacts, err := db.ListContacts(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 2 {
		t.Fatalf("len = %d, want 2", len(contacts))
	}
	byID := map[string]model.Contact{}
	for _, c := range contacts {
		if c.ID == "" {
			t.Errorf("contact %q has no local id", c.ContactID)
		}
		byID[c.ContactID] = c
	}
	if got := byID["u2"]; got.Name != "Eli Ramp" || got.Email != "eli@fleet.example" {
		t.Errorf("u2 = %+v", got)
	}
	if got := byID["u3"]; got.Name != "Ops desk" || got.Phone != "+1555" {
		t.Errorf("u3 = %+v", got)
	}

	other, err := db.ListContacts(ctx, "u9")
	if err != nil || len(other) != 0 {
		t.Errorf("ListContacts(u9) = %v, %v", other, err)
	}
}

func TestUpsertContactRequiresContactID(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertContact(context.Background(), "u1", model.Contact{Name: "x"}); err == nil {
		t.Error("expected error for contact without contact id")
	}
}

func TestGroupRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedUsers(t, db,
		User{ID: "u1", FirstName: "Dana", LastName: "Crew"},
		User{ID: "u2", Email: "eli@fleet.example"},
	)

	if err := db.UpsertGroup(ctx, "g1", "Ramp", []string{"u1", "u2", "u1"}); err != nil {
		t.Fatal(err)
	}
	g, err := db.GetGroup(ctx, "g1")
	if err != nil || g == nil {
		t.Fatalf("GetGroup() = %v, %v", g, err)
	}
	if g.Name != "Ramp" || len(g.Members) != 2 {
		t.Fatalf("group = %+v", g)
	}
	if g.Members[0].FullName() != "Dana Crew" || g.Members[1].Email != "eli@fleet.example" {
		t.Errorf("members = %+v", g.Members)
	}

	if err := db.UpsertGroup(ctx, "g1", "Ramp night", []string{"u2"}); err != nil {
		t.Fatal(err)
	}
	g, _ = db.GetGroup(ctx, "g1")
	if g.Name != "Ramp night" || len(g.Members) != 1 {
		t.Errorf("after update group = %+v", g)
	}

	missing, err := db.GetGroup(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetGroup(nope) = %+v, %v", missing, err)
	}
}

func TestCreateDirectMessageFansOut(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedUsers(t, db,
		User{ID: "alice", FirstName: "Alice"},
		User{ID: "bob", Email: "bob@fleet.example"},
	)

	m, err := db.CreateMessage(ctx, NewMessage{
		SenderID:        "alice",
		Content:         "hi",
		RecipientEmails: []string{"BOB@fleet.example"},
		ConversationID:  "client-guess",
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if m.ConversationID != conversation.DirectID("bob", "alice") {
		t.Errorf("conversation id = %q", m.ConversationID)
	}
	if m.SenderName != "Alice" || m.MessageType != MessageTypeDirect {
		t.Errorf("message = %+v", m)
	}

	got, err := db.PullInbox(ctx, "bob", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != m.ID {
		t.Fatalf("bob inbox = %+v", got)
	}
	again, err := db.PullInbox(ctx, "bob", 10)
	if err != nil || len(again) != 0 {
		t.Errorf("second pull = %+v, %v; want empty", again, err)
	}
	mine, err := db.PullInbox(ctx, "alice", 10)
	if err != nil || len(mine) != 0 {
		t.Errorf("sender inbox = %+v, %v; want empty without echo", mine, err)
	}
}

func TestCreateMessageEcho(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	m, err := db.CreateMessage(ctx, NewMessage{
		SenderID: "alice", Content: "hi", RecipientUserIDs: []string{"bob"}, EchoToSender: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	mine, err := db.PullInbox(ctx, "alice", 10)
	if err != nil || len(mine) != 1 || mine[0].ID != m.ID {
		t.Errorf("echo = %+v, %v", mine, err)
	}
}

func TestCreateMessageErrors(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.UpsertGroup(ctx, "g1", "Ramp", []string{"u1", "u2"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		nm   NewMessage
		want error
	}{
		{"no recipients", NewMessage{SenderID: "u1", Content: "x"}, ErrNoRecipients},
		{"only self", NewMessage{SenderID: "u1", Content: "x", RecipientUserIDs: []string{"u1"}}, ErrNoRecipients},
		{"unknown email", NewMessage{SenderID: "u1", Content: "x", RecipientEmails: []string{"ghost@x"}}, ErrNoRecipients},
		{"multi without key", NewMessage{SenderID: "u1", Content: "x", RecipientUserIDs: []string{"u2", "u3"}}, ErrNoConversation},
		{"not member", NewMessage{SenderID: "u9", Content: "x", GroupID: "g1"}, ErrNotMember},
		{"unknown group", NewMessage{SenderID: "u1", Content: "x", GroupID: "g404"}, ErrGroupNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateMessage(ctx, tt.nm)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateMessage() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGroupMessageSkipsSender(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.UpsertGroup(ctx, "g1", "Ramp", []string{"u1", "u2", "u3"}); err != nil {
		t.Fatal(err)
	}

	m, err := db.CreateMessage(ctx, NewMessage{SenderID: "u1", Content: "pushback", GroupID: "g1"})
	if err != nil {
		t.Fatal(err)
	}
	if m.ConversationID != "group:g1" || m.MessageType != model.MessageTypeGroup {
		t.Errorf("message = %+v", m)
	}
	for user, want := range map[string]int{"u1": 0, "u2": 1, "u3": 1} {
		got, err := db.PullInbox(ctx, user, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != want {
			t.Errorf("%s inbox len = %d, want %d", user, len(got), want)
		}
	}
}

func TestPullInboxLimitAndOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		if _, err := db.CreateMessage(ctx, NewMessage{SenderID: "a", Content: text, RecipientUserIDs: []string{"b"}}); err != nil {
			t.Fatal(err)
		}
	}

	first, err := db.PullInbox(ctx, "b", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || first[0].Content != "one" || first[1].Content != "two" {
		t.Fatalf("first pull = %+v", first)
	}
	rest, err := db.PullInbox(ctx, "b", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].Content != "three" {
		t.Errorf("second pull = %+v", rest)
	}
}

func TestHistoryPages(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	var key string
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		m, err := db.CreateMessage(ctx, NewMessage{SenderID: "x", Content: text, RecipientUserIDs: []string{"y"}})
		if err != nil {
			t.Fatal(err)
		}
		key = m.ConversationID
	}

	tests := []struct {
		page, size int
		want       []string
	}{
		{1, 2, []string{"d", "e"}},
		{2, 2, []string{"b", "c"}},
		{3, 2, []string{"a"}},
		{4, 2, nil},
		{0, 10, []string{"a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		got, err := db.History(ctx, key, tt.page, tt.size)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("page %d size %d: len = %d, want %d", tt.page, tt.size, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].Content != tt.want[i] {
				t.Errorf("page %d [%d] = %q, want %q", tt.page, i, got[i].Content, tt.want[i])
			}
		}
	}
}

func TestRecordConversion(t *testing.T) {
	m := Message{ID: "m1", SenderID: "u1", Content: "hi", SentAt: 1700000000123, MessageType: "Group", GroupID: "g1", ConversationID: "group:g1"}
	r := m.Record()
	if r.SentAt.UnixMilli() != m.SentAt || !r.IsGroup() || r.GroupID != "g1" {
		t.Errorf("record = %+v", r)
	}
}

func TestApplySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	data := `
[[users]]
id = "u1"
first_name = "Dana"

[[users]]
id = "u2"
email = "eli@fleet.example"

[[contacts]]
owner = "u1"
contact_id = "u2"
name = "Eli"

[[groups]]
id = "g1"
name = "Ramp"
members = ["u1", "u2"]
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}

	db := testDB(t)
	ctx := context.Background()
	if err := db.ApplySeed(ctx, seed); err != nil {
		t.Fatalf("ApplySeed() error = %v", err)
	}
	// Applying twice is harmless.
	if err := db.ApplySeed(ctx, seed); err != nil {
		t.Fatalf("second ApplySeed() error = %v", err)
	}

	if n, _ := db.UserCount(ctx); n != 2 {
		t.Errorf("users = %d, want 2", n)
	}
	contacts, _ := db.ListContacts(ctx, "u1")
	if len(contacts) != 1 || contacts[0].Name != "Eli" {
		t.Errorf("contacts = %+v", contacts)
	}
	if ok, _ := db.IsMember(ctx, "g1", "u2"); !ok {
		t.Error("u2 should be a member of g1")
	}
}

func TestAmbiguousUserIDsRejected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	err := db.ApplySeed(ctx, &Seed{Users: []SeedUser{{ID: "a_b"}}})
	if !errors.Is(err, conversation.ErrAmbiguousID) {
		t.Errorf("ApplySeed(a_b) = %v, want ErrAmbiguousID", err)
	}
	_, err = db.CreateMessage(ctx, NewMessage{SenderID: "a", Content: "hi", RecipientUserIDs: []string{"b_c"}})
	if !errors.Is(err, conversation.ErrAmbiguousID) {
		t.Errorf("CreateMessage to b_c = %v, want ErrAmbiguousID", err)
	}
}

func TestApplySeedRejectsUserWithoutID(t *testing.T) {
	db := testDB(t)
	err := db.ApplySeed(context.Background(), &Seed{Users: []SeedUser{{Email: "x@y"}}})
	if err == nil {
		t.Error("expected error for seed user without id")
	}
}
