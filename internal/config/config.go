package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the global ~/.fleetchat/config.toml.
type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
}

// Profile holds the connection and sync settings of one named profile.
type Profile struct {
	BaseURL         string   `toml:"base_url"`
	UserID          string   `toml:"user_id"`
	Email           string   `toml:"email,omitempty"`
	DisplayName     string   `toml:"display_name,omitempty"`
	Token           string   `toml:"token,omitempty"`
	PollInterval    Duration `toml:"poll_interval,omitempty"`
	PageSize        int      `toml:"page_size,omitempty"`
	HistoryPageSize int      `toml:"history_page_size,omitempty"`
	RequestTimeout  Duration `toml:"request_timeout,omitempty"`
	EchoWindow      Duration `toml:"echo_window,omitempty"`
}

// Defaults for unset profile fields.
const (
	DefaultBaseURL         = "http://127.0.0.1:8787"
	DefaultPollInterval    = 2500 * time.Millisecond
	DefaultPageSize        = 50
	DefaultHistoryPageSize = 50
	DefaultRequestTimeout  = 15 * time.Second
	DefaultEchoWindow      = 2 * time.Minute
)

// Duration is a time.Duration written as a Go duration string ("2.5s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// WithDefaults returns p with every unset field filled in.
func (p Profile) WithDefaults() Profile {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.PollInterval.Duration <= 0 {
		p.PollInterval.Duration = DefaultPollInterval
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.HistoryPageSize <= 0 {
		p.HistoryPageSize = DefaultHistoryPageSize
	}
	if p.RequestTimeout.Duration <= 0 {
		p.RequestTimeout.Duration = DefaultRequestTimeout
	}
	if p.EchoWindow.Duration <= 0 {
		p.EchoWindow.Duration = DefaultEchoWindow
	}
	return p
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrEmpty is Load, except a missing file yields an empty config.
func LoadOrEmpty(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Profile returns the named profile with the environment overlay and defaults
// applied. A profile absent from the file is not an error; it may be defined
// entirely by the environment.
func (c *Config) Profile(name string) (Profile, error) {
	p := c.Profiles[name]
	if err := p.applyEnv(os.LookupEnv); err != nil {
		return Profile{}, err
	}
	return p.WithDefaults(), nil
}

// SetProfile stores p under name.
func (c *Config) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = p
}

// LoadDotEnv loads a .env file into the process environment. Variables already
// set win. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLEETCHAT_"

func (p *Profile) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("BASE_URL", &p.BaseURL)
	str("USER_ID", &p.UserID)
	str("EMAIL", &p.Email)
	str("DISPLAY_NAME", &p.DisplayName)
	str("TOKEN", &p.Token)

	for key, dst := range map[string]*int{
		"PAGE_SIZE":         &p.PageSize,
		"HISTORY_PAGE_SIZE": &p.HistoryPageSize,
	} {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, key, v, err)
		}
		*dst = n
	}

	for key, dst := range map[string]*Duration{
		"POLL_INTERVAL":   &p.PollInterval,
		"REQUEST_TIMEOUT": &p.RequestTimeout,
		"ECHO_WINDOW":     &p.EchoWindow,
	} {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
	}
	return nil
}
