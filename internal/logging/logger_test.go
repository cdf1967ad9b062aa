package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileOnlyWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "fleetchat.log")

	logger, err := NewFileOnly(path, "ops")
	if err != nil {
		t.Fatalf("NewFileOnly() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "hello" || entry["profile"] != "ops" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["pid"]; !ok {
		t.Error("pid field missing")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log permission = %o, want 0600", perm)
	}
}
