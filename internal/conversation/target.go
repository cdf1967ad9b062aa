package conversation

import (
	"strings"

	"github.com/matheus3301/fleetchat/internal/model"
)

// ParseTarget reads a target written on a command line: "group:<id>" names a
// group, anything with an @ is an email, and the rest is a contact id.
// An empty string yields the zero target.
func ParseTarget(s string) model.Target {
	s = strings.TrimSpace(s)
	if gid, ok := GroupIDOf(s); ok {
		return model.Target{GroupID: strings.TrimSpace(gid)}
	}
	if strings.Contains(s, "@") {
		return model.Target{Email: s}
	}
	return model.Target{ContactID: s}
}
