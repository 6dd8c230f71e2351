// Package config reads the daemon settings. Settings are supplied by viper
// (flags, env, config file) and consumed read-only by the engine.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values registered on the root command.
const (
	DefaultHistoryLimit = 1000
	DefaultPollInterval = 200 * time.Millisecond
)

// knownPasswordManagers is the fixed identifier set skipped when the
// ignore-password-managers setting is on.
var knownPasswordManagers = map[string]struct{}{
	"com.1password.1password":         {},
	"com.agilebits.onepassword7":      {},
	"com.bitwarden.desktop":           {},
	"com.dashlane.dashlanephonefinal": {},
	"com.lastpass.lastpass":           {},
	"org.keepassxc.keepassxc":         {},
}

// Settings is one read of the engine configuration.
type Settings struct {
	Database string

	HistoryLimit           int
	PollInterval           time.Duration
	IgnorePasswordManagers bool
	IgnoredApps            []string
	AutoDeleteAfterDays    int
}

// Load snapshots the current viper state into a Settings value.
func Load() Settings {
	s := Settings{
		Database:               viper.GetString("database"),
		HistoryLimit:           viper.GetInt("history-limit"),
		PollInterval:           viper.GetDuration("poll-interval"),
		IgnorePasswordManagers: viper.GetBool("ignore-password-managers"),
		IgnoredApps:            viper.GetStringSlice("ignored-apps"),
		AutoDeleteAfterDays:    viper.GetInt("auto-delete-days"),
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = DefaultHistoryLimit
	}
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}
	return s
}

// ShouldIgnore reports whether a source application identifier is excluded
// from capture by the privacy settings.
func (s Settings) ShouldIgnore(sourceID string) bool {
	if sourceID == "" {
		return false
	}
	for _, id := range s.IgnoredApps {
		if id == sourceID {
			return true
		}
	}
	if s.IgnorePasswordManagers {
		if _, ok := knownPasswordManagers[sourceID]; ok {
			return true
		}
	}
	return false
}
