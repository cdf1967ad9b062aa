package store

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
)

// Seed is the TOML fixture the dev server can load at startup.
//
//	[[users]]
//	id = "u1"
//	email = "dana@fleet.example"
//	first_name = "Dana"
//
//	[[contacts]]
//	owner = "u1"
//	contact_id = "u2"
//	name = "Eli (ramp)"
//
//	[[groups]]
//	id = "g1"
//	name = "Ramp crew"
//	members = ["u1", "u2"]
type Seed struct {
	Users    []SeedUser    `toml:"users"`
	Contacts []SeedContact `toml:"contacts"`
	Groups   []SeedGroup   `toml:"groups"`
}

type SeedUser struct {
	ID        string `toml:"id"`
	Email     string `toml:"email"`
	FirstName string `toml:"first_name"`
	LastName  string `toml:"last_name"`
	Phone     string `toml:"phone"`
}

type SeedContact struct {
	Owner     string `toml:"owner"`
	ContactID string `toml:"contact_id"`
	Name      string `toml:"name"`
	Email     string `toml:"email"`
	Phone     string `toml:"phone"`
}

type SeedGroup struct {
	ID      string   `toml:"id"`
	Name    string   `toml:"name"`
	Members []string `toml:"members"`
}

// LoadSeed decodes a seed file.
func LoadSeed(path string) (*Seed, error) {
	var s Seed
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return &s, nil
}

// ApplySeed upserts every user, contact and group of s.
func (db *DB) ApplySeed(ctx context.Context, s *Seed) error {
	for _, u := range s.Users {
		if u.ID == "" {
			return fmt.Errorf("seed user without id (email %q)", u.Email)
		}
		if err := conversation.ValidateParticipantID(u.ID); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		if err := db.UpsertUser(ctx, &User{
			ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone,
		}); err != nil {
			return fmt.Errorf("seed user %q: %w", u.ID, err)
		}
	}
	for _, c := range s.Contacts {
		if err := db.UpsertContact(ctx, c.Owner, model.Contact{
			ContactID: c.ContactID, Name: c.Name, Email: c.Email, Phone: c.Phone,
		}); err != nil {
			return fmt.Errorf("seed contact %q of %q: %w", c.ContactID, c.Owner, err)
		}
	}
	for _, g := range s.Groups {
		if err := db.UpsertGroup(ctx, g.ID, g.Name, g.Members); err != nil {
			return fmt.Errorf("seed group %q: %w", g.ID, err)
		}
	}
	return nil
}
