package model

import "time"

// UnknownSender is the display name used until a sender has been resolved.
const UnknownSender = "Unknown"

// Status tracks a message through the optimistic send protocol.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Kind is the closed set of message content variants.
type Kind int

const (
	KindText Kind = iota
	KindAircraftList
	KindSelectiveAction
	KindSystem
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAircraftList:
		return "aircraft_list"
	case KindSelectiveAction:
		return "selective_action"
	case KindSystem:
		return "system"
	default:
		return "text"
	}
}

// ParseKind maps a wire content kind to a Kind. Unknown or empty values are text.
func ParseKind(s string) Kind {
	switch s {
	case "aircraft_list", "aircraftList":
		return KindAircraftList
	case "selective_action", "selectiveAction":
		return KindSelectiveAction
	case "system":
		return KindSystem
	default:
		return KindText
	}
}

// Message is a chat message as held by a conversation view.
type Message struct {
	ID                string
	ConversationID    string
	SenderID          string
	SenderDisplayName string
	Text              string
	SentAt            time.Time
	IsCurrentUser     bool
	Status            Status
	Kind              Kind
}

// IsPlaceholder reports whether the message is a client-only entry awaiting confirmation.
func (m Message) IsPlaceholder() bool {
	return m.Status == StatusPending
}
