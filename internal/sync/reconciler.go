// Package sync reconciles polled and optimistic messages into one ordered list
// and runs the inbox poller that feeds it.
package sync

import (
	"slices"
	"strings"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
)

// Merge returns existing plus every incoming message whose id is not already
// present, sorted ascending by SentAt. Neither input is modified.
func Merge(existing, incoming []model.Message) []model.Message {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]model.Message, 0, len(existing)+len(incoming))
	for _, m := range existing {
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range incoming {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if m.SenderDisplayName == "" {
			m.SenderDisplayName = model.UnknownSender
		}
		out = append(out, m)
	}
	sortBySentAt(out)
	return out
}

// Stable so equal timestamps keep arrival order across repeated merges.
func sortBySentAt(list []model.Message) {
	slices.SortStableFunc(list, func(a, b model.Message) int {
		return a.SentAt.Compare(b.SentAt)
	})
}

// Replace applies fn to the message with the given id at its current position.
// The second result is false when no such message exists.
func Replace(list []model.Message, id string, fn func(model.Message) model.Message) ([]model.Message, bool) {
	idx := Index(list, id)
	if idx < 0 {
		return list, false
	}
	out := slices.Clone(list)
	out[idx] = fn(out[idx])
	return out, true
}

// Remove drops the message with the given id.
func Remove(list []model.Message, id string) ([]model.Message, bool) {
	idx := Index(list, id)
	if idx < 0 {
		return list, false
	}
	out := make([]model.Message, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...), true
}

// Index returns the position of the message with the given id, or -1.
func Index(list []model.Message, id string) int {
	return slices.IndexFunc(list, func(m model.Message) bool { return m.ID == id })
}

// Confirm swaps a placeholder's id for the server id and marks it confirmed.
// A non-zero sentAt replaces the optimistic timestamp; the message keeps its
// position unless the server time moves it past a neighbour. If serverID is
// already in the list (a poll got there first) the placeholder is dropped so
// the message never appears twice.
func Confirm(list []model.Message, placeholderID, serverID string, sentAt time.Time) []model.Message {
	if serverID != placeholderID && Index(list, serverID) >= 0 {
		out, _ := Remove(list, placeholderID)
		return out
	}
	out, ok := Replace(list, placeholderID, func(m model.Message) model.Message {
		m.ID = serverID
		m.Status = model.StatusConfirmed
		if !sentAt.IsZero() {
			m.SentAt = sentAt
		}
		return m
	})
	if ok && !sentAt.IsZero() {
		sortBySentAt(out)
	}
	return out
}

// AbsorbEcho confirms pending placeholders that a polled batch already echoes.
// A placeholder matches an incoming message authored by the current user with
// the same text sent within window of it; the oldest pending match wins. The
// matched placeholder takes the server id and time and the echo is consumed.
// Returns the updated list and the incoming messages left to merge.
func AbsorbEcho(existing, incoming []model.Message, window time.Duration) ([]model.Message, []model.Message) {
	if window <= 0 {
		return existing, incoming
	}
	list := existing
	cloned := false
	var rest []model.Message
	for _, in := range incoming {
		if !in.IsCurrentUser || Index(list, in.ID) >= 0 {
			rest = append(rest, in)
			continue
		}
		idx := slices.IndexFunc(list, func(m model.Message) bool {
			return m.IsPlaceholder() &&
				strings.TrimSpace(m.Text) == strings.TrimSpace(in.Text) &&
				absDuration(m.SentAt.Sub(in.SentAt)) <= window
		})
		if idx < 0 {
			rest = append(rest, in)
			continue
		}
		if !cloned {
			list = slices.Clone(list)
			cloned = true
		}
		list[idx].ID = in.ID
		list[idx].Status = model.StatusConfirmed
		list[idx].SentAt = in.SentAt
	}
	if cloned {
		sortBySentAt(list)
	}
	return list, rest
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
