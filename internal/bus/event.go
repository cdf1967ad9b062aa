package bus

import "time"

// Event kinds published by a conversation view.
const (
	KindMessageUpserted   = "message.upserted"
	KindMessageSendAck    = "message.send_ack"
	KindMessageSendFailed = "message.send_failed"
	KindViewStatusChanged = "view.status_changed"
)

// Event is a notification published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// MessagesChanged is the payload of message.upserted.
type MessagesChanged struct {
	ConversationID string
	Count          int
}

// SendAck is the payload of message.send_ack.
type SendAck struct {
	ConversationID string
	PlaceholderID  string
	ServerID       string
}

// SendFailed is the payload of message.send_failed. Text is the draft that
// was restored to the composer.
type SendFailed struct {
	ConversationID string
	PlaceholderID  string
	Text           string
	Err            error
}
