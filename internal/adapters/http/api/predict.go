package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/okian/fraudboard/internal/domain/feature"
)

const maxPredictBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// predictRequest mirrors the OpenAPI schema for POST /api/predict. Values
// may be numbers or the raw form strings.
type predictRequest struct {
	Time      feature.Value   `json:"time"`
	Amount    feature.Value   `json:"amount"`
	VFeatures []feature.Value `json:"V_features" validate:"len=28"`
}

func (p predictRequest) input() feature.Input {
	in := feature.Input{Time: p.Time, Amount: p.Amount}
	copy(in.V[:], p.VFeatures)
	return in
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /api/predict. A failed cycle is still a 200:
// the failure is part of the rendered state.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req predictRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPredictBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	cmd := h.deps.Predict(r.Context(), req.input())
	writeJSON(w, http.StatusOK, cmd)
}
