package outbox

import (
	"strings"

	"github.com/matheus3301/fleetchat/internal/client"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
)

// RouteFor addresses a message from currentUserID to t.
func RouteFor(currentUserID string, t model.Target) Route {
	r := Route{
		ConversationID:   conversation.ResolveID(currentUserID, t),
		RecipientUserIDs: []string{},
		RecipientEmails:  []string{},
	}
	if t.IsGroup() {
		r.GroupID = t.GroupID
		return r
	}
	if other := conversation.Participant(t); other != "" && !strings.Contains(other, "@") {
		r.RecipientUserIDs = append(r.RecipientUserIDs, other)
	}
	if t.Email != "" {
		r.RecipientEmails = append(r.RecipientEmails, t.Email)
	}
	return r
}

// Request builds the send request carrying content along r.
func (r Route) Request(content string) client.SendRequest {
	return client.SendRequest{
		Content:          content,
		RecipientUserIDs: r.RecipientUserIDs,
		RecipientEmails:  r.RecipientEmails,
		ConversationID:   r.ConversationID,
		GroupID:          r.GroupID,
	}
}
