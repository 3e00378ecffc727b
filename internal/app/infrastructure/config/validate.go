package config

import (
	"errors"
	"fmt"
	"strings"
)

func (m *Manager) validate(cfg *Config) error {
	if cfg.App.Scrollback <= 0 {
		return errors.New("app.scrollback must be positive")
	}

	switch cfg.App.LogLevel {
	case "", "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("unknown app.log_level %q", cfg.App.LogLevel)
	}

	for _, channel := range cfg.App.Channels {
		if channel == "" || strings.ContainsAny(channel, " #") {
			return fmt.Errorf("invalid channel name %q", channel)
		}
	}

	return nil
}
