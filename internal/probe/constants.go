package probe

import "time"

// Default run settings.
const (
	DefaultBaseURL    = "http://localhost:9080"
	DefaultRequests   = 100
	DefaultTimeout    = 30 * time.Second
	DefaultFraudRatio = 0.2
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
	healthRetryInitial      = 100 * time.Millisecond
)
