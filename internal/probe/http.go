package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/okian/fraudboard/pkg/logger"
)

// Submission results.
const (
	resultOK          = "ok"
	resultFailed      = "failed"
	resultSuperseded  = "superseded"
	resultRejected    = "rejected"
	resultRateLimited = "rate_limited"
	resultError       = "error"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

type outcome struct {
	result string
	resp   Response
}

// submitRequests posts every request using config.Workers goroutines.
func submitRequests(ctx context.Context, config *Config, requests []Request, stats *Stats) {
	logger.Get().Info(ctx, "submitting transactions",
		logger.Int("count", len(requests)),
		logger.Int("workers", config.Workers),
	)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/predict"

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	reqCh := make(chan Request, config.Workers*workerChannelMultiplier)

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range reqCh {
				o := submitSingle(ctx, client, url, r)
				if config.Verbose {
					logger.Get().Debug(ctx, "prediction response",
						logger.String("result", o.result),
						logger.Float64("risk", o.resp.RiskScore),
						logger.String("status", o.resp.StatusText),
					)
				}
				mu.Lock()
				stats.record(o)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(reqCh)
		for _, r := range requests {
			select {
			case <-ctx.Done():
				return
			case reqCh <- r:
			}
		}
	}()

	wg.Wait()
}

func (s *Stats) record(o outcome) {
	s.Submitted++
	switch o.result {
	case resultOK:
		s.OK++
		if o.resp.PlayAlert {
			s.Alerts++
		}
	case resultFailed:
		s.Failed++
		if s.FailureKind == nil {
			s.FailureKind = map[string]int{}
		}
		s.FailureKind[o.resp.FailureKind]++
	case resultSuperseded:
		s.Superseded++
	case resultRejected:
		s.Rejected++
	case resultRateLimited:
		s.RateLimited++
	default:
		s.Errors++
	}
}

// submitSingle posts one request and classifies the answer.
func submitSingle(ctx context.Context, client *HTTPClient, url string, r Request) outcome {
	resp, err := client.Post(ctx, url, r)
	if err != nil {
		return outcome{result: resultError}
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{result: resultError}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return outcome{result: resultRateLimited}
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return outcome{result: resultRejected}
	case resp.StatusCode != http.StatusOK:
		return outcome{result: resultError}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return outcome{result: resultError}
	}
	switch {
	case out.Superseded:
		return outcome{result: resultSuperseded, resp: out}
	case out.OK:
		return outcome{result: resultOK, resp: out}
	default:
		return outcome{result: resultFailed, resp: out}
	}
}
