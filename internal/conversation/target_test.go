package conversation

import (
	"testing"

	"github.com/matheus3301/fleetchat/internal/model"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want model.Target
	}{
		{"group:g1", model.Target{GroupID: "g1"}},
		{" ops@fleet.example ", model.Target{Email: "ops@fleet.example"}},
		{"u42", model.Target{ContactID: "u42"}},
		{"", model.Target{}},
	}
	for _, tt := range tests {
		if got := ParseTarget(tt.in); got != tt.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
