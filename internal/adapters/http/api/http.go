// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/fraudboard/internal/app"
	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/feature"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict runs one prediction cycle and returns the command to paint.
	Predict(ctx context.Context, in feature.Input) cycle.Command

	// Snapshot and Reset expose the session state.
	Snapshot() service.Snapshot
	Reset(ctx context.Context)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithPredictRateLimit limits POST /api/predict to rps requests per second
// with the given burst. A non-positive rps disables the limit.
func WithPredictRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.predictRPS = rps
		s.predictBurst = burst
	}
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	stateHandler   *StateHandler

	predictRPS   float64
	predictBurst int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		stateHandler:   NewStateHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	predict := MetricsMiddleware(s.predictHandler.HandlePredict, "predict")
	if s.predictRPS > 0 {
		predict = MetricsMiddleware(RateLimitMiddleware(s.predictHandler.HandlePredict, "predict", s.predictRPS, s.predictBurst), "predict")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/predict", predict)
	mux.HandleFunc("/api/state", MetricsMiddleware(s.stateHandler.HandleState, "state"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
