// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and env vars over the defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the log encoder: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// ScoringURL is the prediction endpoint of the scoring service.
	ScoringURL string `koanf:"scoring_url" validate:"required,url"`

	// ScoringTimeoutMS caps one scoring exchange. 0 leaves it unbounded.
	ScoringTimeoutMS int `koanf:"scoring_timeout_ms" validate:"gte=0"`

	// TrendCapacity is the number of points kept in the trend window.
	TrendCapacity int `koanf:"trend_capacity" validate:"gte=1"`

	// AlertThreshold is the risk score above which alert mode activates.
	AlertThreshold float64 `koanf:"alert_threshold" validate:"gte=0,lte=100"`

	// InputPolicy is reject or passthrough.
	InputPolicy string `koanf:"input_policy" validate:"oneof=reject passthrough"`

	// PredictRateLimit is requests per second for /api/predict. 0 disables.
	PredictRateLimit float64 `koanf:"predict_rate_limit" validate:"gte=0"`

	// PredictBurst is the token bucket size for /api/predict.
	PredictBurst int `koanf:"predict_burst" validate:"gte=0"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		ScoringURL:       "http://127.0.0.1:8000/predict",
		ScoringTimeoutMS: 0,
		TrendCapacity:    10,
		AlertThreshold:   80,
		InputPolicy:      "reject",
		PredictRateLimit: 20,
		PredictBurst:     40,
	}
}

// ScoringTimeout returns ScoringTimeoutMS as a duration.
func (c *Config) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutMS) * time.Millisecond
}
