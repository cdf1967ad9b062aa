package profile

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the base directory, mainly for tests and sandboxes.
const HomeEnv = "FLEETCHAT_HOME"

// BaseDir returns ~/.fleetchat, or $FLEETCHAT_HOME when set.
func BaseDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fleetchat")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DevServerDBPath returns the dev server's SQLite database path.
func DevServerDBPath(name string) string {
	return filepath.Join(Dir(name), "devserver.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path of the named program.
func LogPath(name, program string) string {
	return filepath.Join(LogDir(name), program+".log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
