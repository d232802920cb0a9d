package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/okian/fraudboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Requests <= 0 {
		c.Requests = DefaultRequests
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FraudRatio < 0 || c.FraudRatio > 1 {
		c.FraudRatio = DefaultFraudRatio
	}
}

// Run executes the complete probe and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	config.applyDefaults()
	stats := &Stats{StartTime: time.Now(), FailureKind: map[string]int{}}

	logger.Get().Info(ctx, "starting dashboard probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Duration("wait", config.Wait),
	)

	if err := checkHealth(ctx, config); err != nil {
		return nil, fmt.Errorf("dashboard health check failed: %w", err)
	}

	requests, err := generateRequests(ctx, config.Requests, config.FraudRatio)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(requests)

	submitRequests(ctx, config, requests, stats)

	if config.OutputFile != "" {
		if err := saveRequests(config.OutputFile, requests); err != nil {
			logger.Get().Warn(ctx, "failed to save transactions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkHealth verifies the dashboard is serving. With config.Wait > 0 it
// retries with exponential backoff until Wait has elapsed.
func checkHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	probeOnce := func() error {
		resp, err := client.Get(ctx, config.BaseURL+"/healthz")
		if err != nil {
			return fmt.Errorf("failed to connect to dashboard: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
		}
		return nil
	}
	if config.Wait <= 0 {
		return probeOnce()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = healthRetryInitial
	b.MaxElapsedTime = config.Wait
	return backoff.RetryNotify(probeOnce, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Get().Debug(ctx, "dashboard not ready",
			logger.Error(err),
			logger.Duration("retryIn", next),
		)
	})
}

// saveRequests writes the generated transactions as a JSON array.
func saveRequests(filename string, requests []Request) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transactions: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var okRate, perSecond float64
	if stats.Submitted > 0 {
		okRate = float64(stats.OK) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("ok", stats.OK),
		logger.Int("failed", stats.Failed),
		logger.Int("superseded", stats.Superseded),
		logger.Int("alerts", stats.Alerts),
		logger.Int("rejected", stats.Rejected),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("errors", stats.Errors),
		logger.Any("failureKinds", stats.FailureKind),
		logger.Duration("duration", stats.Duration),
		logger.Float64("okRate", okRate),
		logger.Float64("requestsPerSecond", perSecond),
	)
}
