// Package contacts resolves display names for message senders.
package contacts

import (
	"context"
	"strings"
	gosync "sync"

	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
	"go.uber.org/zap"
)

// Directory is the remote source of group and contact metadata.
type Directory interface {
	Group(ctx context.Context, groupID string) (model.Group, error)
	Contacts(ctx context.Context) ([]model.Contact, error)
}

// Resolver caches participant id → display name for one open conversation.
type Resolver struct {
	dir    Directory
	logger *zap.Logger

	mu    gosync.RWMutex
	names map[string]string
	local map[string]string
}

// NewResolver creates a resolver backed by dir.
func NewResolver(dir Directory, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		dir:    dir,
		logger: logger,
		names:  make(map[string]string),
		local:  make(map[string]string),
	}
}

// Remember records a locally known contact as a fallback for resolution.
func (r *Resolver) Remember(c model.Contact) {
	name := c.DisplayName()
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range []string{c.ContactID, c.ID, c.Email} {
		if id != "" {
			r.local[id] = name
		}
	}
}

// RememberTarget records the counterparty of a direct target as locally known.
func (r *Resolver) RememberTarget(t model.Target) {
	if t.IsGroup() {
		return
	}
	c := model.Contact{ID: t.ID, ContactID: t.ContactID, Name: t.Name, Email: t.Email, Phone: t.Phone}
	if c.ContactID == "" {
		c.ContactID = conversation.Participant(t)
	}
	r.Remember(c)
}

// Resolve fetches names for the participants of t and replaces the cache.
// Failures are logged and leave the previous cache in place.
func (r *Resolver) Resolve(ctx context.Context, t model.Target) {
	r.RememberTarget(t)

	var (
		names map[string]string
		err   error
	)
	if t.IsGroup() {
		names, err = r.groupNames(ctx, t.GroupID)
	} else {
		names, err = r.contactNames(ctx, t)
	}
	if err != nil {
		r.logger.Warn("participant name resolution failed", zap.Error(err), zap.String("target", t.Label()))
		return
	}

	r.mu.Lock()
	r.names = names
	r.mu.Unlock()
}

func (r *Resolver) groupNames(ctx context.Context, groupID string) (map[string]string, error) {
	g, err := r.dir.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == "" {
			continue
		}
		if name := m.FullName(); name != "" {
			names[m.UserID] = name
		} else if m.Email != "" {
			names[m.UserID] = m.Email
		}
	}
	return names, nil
}

func (r *Resolver) contactNames(ctx context.Context, t model.Target) (map[string]string, error) {
	list, err := r.dir.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	other := conversation.Participant(t)
	names := make(map[string]string, 1)
	for _, c := range list {
		r.Remember(c)
		if !matchesTarget(c, t, other) {
			continue
		}
		if name := c.DisplayName(); name != "" {
			names[other] = name
		}
		break
	}
	return names, nil
}

func matchesTarget(c model.Contact, t model.Target, other string) bool {
	switch {
	case c.ContactID != "" && c.ContactID == other:
		return true
	case t.ID != "" && c.ID == t.ID:
		return true
	case t.Email != "" && strings.EqualFold(c.Email, t.Email):
		return true
	default:
		return false
	}
}

// Name returns the display name for senderID. The fallback chain is the
// resolved cache, then locally known contacts, then placeholder (the name the
// record carried, if any), then model.UnknownSender.
func (r *Resolver) Name(senderID, placeholder string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[senderID]; ok && name != "" {
		return name
	}
	if name, ok := r.local[senderID]; ok && name != "" {
		return name
	}
	if placeholder = strings.TrimSpace(placeholder); placeholder != "" {
		return placeholder
	}
	return model.UnknownSender
}

// Reset drops every resolved name. Locally remembered contacts are kept.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = make(map[string]string)
}
