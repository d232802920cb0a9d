// Package probe drives the dashboard with generated transactions: it submits
// them concurrently to POST /api/predict and reports how the cycles ended.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the dashboard
	Requests   int           // Number of transactions to submit
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Wait       time.Duration // How long to wait for the dashboard to come up; 0 checks once
	FraudRatio float64       // Share of transactions drawn from the suspicious profile
	OutputFile string        // Optional file for the generated transactions
	Verbose    bool          // Log every response
}

// Request is the POST /api/predict body. Values are sent as strings, the way
// the dashboard form submits them.
type Request struct {
	Time      string   `json:"time"`
	Amount    string   `json:"amount"`
	VFeatures []string `json:"V_features"`
}

// Response is the part of the command the probe inspects.
type Response struct {
	OK          bool    `json:"ok"`
	Superseded  bool    `json:"superseded"`
	PlayAlert   bool    `json:"play_alert"`
	RiskScore   float64 `json:"risk_score"`
	StatusText  string  `json:"status_text"`
	FailureKind string  `json:"failure_kind"`
}

// Stats holds probe statistics.
type Stats struct {
	Generated   int
	Submitted   int
	OK          int
	Failed      int
	Superseded  int
	Alerts      int
	Rejected    int
	RateLimited int
	Errors      int
	FailureKind map[string]int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
