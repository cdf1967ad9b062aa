package profile

import "github.com/matheus3301/fleetchat/internal/config"

const DefaultName = "main"

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. FLEETCHAT_PROFILE
// 3. config.toml default_profile
// 4. "main"
func Resolve(flagOverride string, getenv func(string) string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if getenv != nil {
		if name := getenv(config.EnvPrefix + "PROFILE"); name != "" {
			return name
		}
	}
	cfg, err := config.Load(ConfigPath())
	if err == nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultName
}
