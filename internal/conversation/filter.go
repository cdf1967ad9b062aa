package conversation

import "github.com/matheus3301/fleetchat/internal/model"

// Matches reports whether an inbox record belongs to the conversation with t.
func Matches(currentUserID string, t model.Target, r model.Record) bool {
	if t.IsGroup() {
		return r.IsGroup() && r.GroupID == t.GroupID
	}
	if r.IsGroup() || r.GroupID != "" {
		return false
	}
	if r.ConversationID != "" {
		return r.ConversationID == ResolveID(currentUserID, t)
	}
	other := Participant(t)
	return (other != "" && r.SenderID == other) || r.SenderID == currentUserID
}

// Filter returns the records of batch that belong to the conversation with t, in order.
func Filter(currentUserID string, t model.Target, batch []model.Record) []model.Record {
	var out []model.Record
	for _, r := range batch {
		if Matches(currentUserID, t, r) {
			out = append(out, r)
		}
	}
	return out
}
