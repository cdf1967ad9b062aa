// Package conversation derives conversation keys and scopes inbox records to a conversation.
package conversation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matheus3301/fleetchat/internal/model"
)

const (
	groupPrefix  = "group:"
	directPrefix = "dm:"
	separator    = "_"
)

// ErrAmbiguousID is returned for user ids that would make a direct key ambiguous.
var ErrAmbiguousID = errors.New(`user id must not contain "_"`)

// ValidateParticipantID rejects ids a direct key cannot carry unambiguously.
func ValidateParticipantID(id string) error {
	if strings.Contains(id, separator) {
		return fmt.Errorf("%q: %w", id, ErrAmbiguousID)
	}
	return nil
}

// Participant returns the canonical identifier of the counterparty of a direct target:
// the contact id, else the email, else the local id.
func Participant(t model.Target) string {
	for _, id := range []string{t.ContactID, t.Email, t.ID} {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

// ResolveID returns the deterministic conversation key for target as seen by currentUserID.
func ResolveID(currentUserID string, t model.Target) string {
	if t.IsGroup() {
		return GroupKey(t.GroupID)
	}
	return DirectID(currentUserID, Participant(t))
}

// DirectID builds the direct conversation key for two participants in either order.
func DirectID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return directPrefix + strings.Join(pair, separator)
}

// IsGroupID reports whether key names a group conversation.
func IsGroupID(key string) bool {
	return strings.HasPrefix(key, groupPrefix)
}

// GroupKey returns the conversation key of a group.
func GroupKey(groupID string) string {
	return groupPrefix + groupID
}

// GroupIDOf extracts the group id from a group conversation key.
func GroupIDOf(key string) (string, bool) {
	return strings.CutPrefix(key, groupPrefix)
}

// HasDirectParticipant reports whether userID is one side of the direct key.
// Keys that do not split into exactly one sorted pair match nobody.
func HasDirectParticipant(key, userID string) bool {
	pair, ok := strings.CutPrefix(key, directPrefix)
	if !ok || userID == "" {
		return false
	}
	parts := strings.Split(pair, separator)
	if len(parts) != 2 || parts[0] > parts[1] {
		return false
	}
	return parts[0] == userID || parts[1] == userID
}
