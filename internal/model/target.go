package model

import "strings"

// Target identifies who a conversation is with: a direct contact or a group.
type Target struct {
	// ID is the local (directory row) identifier of the contact.
	ID        string
	ContactID string
	Email     string
	Phone     string
	Name      string
	GroupID   string
	GroupName string
}

// IsGroup reports whether the target is a group conversation.
func (t Target) IsGroup() bool {
	return t.GroupID != ""
}

// Label returns a human-readable label for the target.
func (t Target) Label() string {
	if t.IsGroup() {
		if t.GroupName != "" {
			return t.GroupName
		}
		return t.GroupID
	}
	for _, s := range []string{t.Name, t.Email, t.Phone, t.ContactID, t.ID} {
		if s != "" {
			return s
		}
	}
	return UnknownSender
}

// Contact is an entry of the contact directory.
type Contact struct {
	ID        string `json:"id"`
	ContactID string `json:"contactId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// DisplayName prefers name, then email, then phone.
func (c Contact) DisplayName() string {
	for _, s := range []string{c.Name, c.Email, c.Phone} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Group is group metadata with its members.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// Member is a group member.
type Member struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName is first and last name joined and trimmed.
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Target returns the direct conversation target for the contact.
func (c Contact) Target() Target {
	return Target{ID: c.ID, ContactID: c.ContactID, Email: c.Email, Phone: c.Phone, Name: c.DisplayName()}
}
