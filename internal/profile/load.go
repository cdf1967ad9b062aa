package profile

import (
	"fmt"
	"os"

	"github.com/matheus3301/fleetchat/internal/config"
)

// Settings is a resolved, validated profile ready for use by a command.
type Settings struct {
	Name string
	config.Profile
}

// Load resolves the active profile from flagOverride, the environment and
// config.toml, and returns its settings with defaults applied. A .env file in
// the working directory is read first.
func Load(flagOverride string) (Settings, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}
	name := Resolve(flagOverride, os.Getenv)
	if err := ValidateName(name); err != nil {
		return Settings{}, err
	}
	cfg, err := config.LoadOrEmpty(ConfigPath())
	if err != nil {
		return Settings{}, err
	}
	p, err := cfg.Profile(name)
	if err != nil {
		return Settings{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return Settings{Name: name, Profile: p}, nil
}

// RequireUser returns an error when the profile has no user id, which every
// messaging call needs.
func (s Settings) RequireUser() error {
	if s.UserID == "" {
		return fmt.Errorf("profile %q has no user_id; set it in %s or %sUSER_ID", s.Name, ConfigPath(), config.EnvPrefix)
	}
	return nil
}
