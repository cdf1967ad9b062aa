package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/fleetchat/internal/config"
)

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)
	t.Setenv(config.EnvPrefix+"PROFILE", "")
	t.Setenv(config.EnvPrefix+"USER_ID", "")
	t.Chdir(t.TempDir())

	cfg := &config.Config{DefaultProfile: "ops"}
	cfg.SetProfile("ops", config.Profile{UserID: "u1", BaseURL: "http://ops.example:9000"})
	if err := config.Save(filepath.Join(home, "config.toml"), cfg); err != nil {
		t.Fatal(err)
	}

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "ops" || s.UserID != "u1" || s.BaseURL != "http://ops.example:9000" {
		t.Errorf("settings = %+v", s)
	}
	if s.PollInterval.Duration != config.DefaultPollInterval {
		t.Errorf("poll interval = %v, defaults not applied", s.PollInterval)
	}
	if err := s.RequireUser(); err != nil {
		t.Errorf("RequireUser() error = %v", err)
	}
}

func TestLoadFlagAndDotEnv(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Setenv(config.EnvPrefix+"PROFILE", "")
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvPrefix+"POLL_INTERVAL", "")
	os.Unsetenv(config.EnvPrefix + "POLL_INTERVAL")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FLEETCHAT_POLL_INTERVAL=5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load("crew")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "crew" {
		t.Errorf("name = %q, want flag value", s.Name)
	}
	if s.PollInterval.Duration != 5*time.Second {
		t.Errorf("poll interval = %v, .env not applied", s.PollInterval)
	}
	if err := s.RequireUser(); err == nil {
		t.Error("RequireUser() should fail without a user id")
	}
}

func TestLoadInvalidName(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Chdir(t.TempDir())
	if _, err := Load("../escape"); err == nil {
		t.Error("Load() accepted an invalid profile name")
	}
}
