package ratelimit

import (
	"time"

	"github.com/donote/donote/internal/pkg/env"
)

const (
	// MaxRequestsAPI is the default number of /api requests per window.
	MaxRequestsAPI = 30
	// DefaultWindow is the fixed window length.
	DefaultWindow = 60 * time.Second
)

// Config holds the window settings.
type Config struct {
	Max    int
	Window time.Duration
}

// ConfigFromEnv reads RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS.
func ConfigFromEnv() Config {
	cfg := Config{
		Max:    env.GetEnvInt("RATE_LIMIT_MAX", MaxRequestsAPI),
		Window: time.Duration(env.GetEnvInt("RATE_LIMIT_WINDOW_SECONDS", int(DefaultWindow/time.Second))) * time.Second,
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxRequestsAPI
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return cfg
}
