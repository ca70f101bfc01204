package eval

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rankeval/rank-eval/internal/bus"
	"github.com/rankeval/rank-eval/internal/history"
	reqctx "github.com/rankeval/rank-eval/internal/pkg/context"
	apperrors "github.com/rankeval/rank-eval/internal/pkg/errors"
	"github.com/rankeval/rank-eval/internal/pkg/hash"
	"github.com/rankeval/rank-eval/internal/pkg/logger"
	"github.com/rankeval/rank-eval/internal/pkg/security"
)

// Handler provides HTTP handlers for metric evaluation.
type Handler struct {
	calc   *Calculator
	runs   history.Store
	events bus.Bus
	log    *logger.Logger

	// DefaultKs overrides the package-level retrieval cutoffs for requests
	// that omit them.
	DefaultKs []int
}

// NewHandler creates a new evaluation handler. The history store and event
// bus are optional; when nil the corresponding side effects are skipped.
func NewHandler(calc *Calculator, runs history.Store, events bus.Bus, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{calc: calc, runs: runs, events: events, log: log}
}

// RegisterRoutes registers evaluation routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/metrics/generation", h.handleGeneration)
	mux.HandleFunc("POST /v1/metrics/retrieval", h.handleRetrieval)
	mux.HandleFunc("GET /v1/runs", h.handleListRuns)
}

// GenerationRequest scores model answers against reference answers.
type GenerationRequest struct {
	Documents   []Document `json:"documents"`
	Predictions []string   `json:"predictions"`
}

// RetrievalRequest scores retrieved contexts at the requested cutoffs.
type RetrievalRequest struct {
	Documents    []Document `json:"documents"`
	Ks           []int      `json:"ks,omitempty"`
	UseReordered bool       `json:"use_reordered,omitempty"`
}

// EvaluationResponse is the common response shape for both metric kinds.
type EvaluationResponse struct {
	RunID     string             `json:"run_id"`
	Dataset   string             `json:"dataset"`
	Kind      string             `json:"kind"`
	Documents int                `json:"documents"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (h *Handler) handleGeneration(w http.ResponseWriter, r *http.Request) {
	var req GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body: "+err.Error()))
		return
	}

	metrics, err := h.calc.GenerationMetrics(r.Context(), req.Documents, req.Predictions)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	resp := h.record(r.Context(), history.KindGeneration, req, len(req.Documents), metrics)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRetrieval(w http.ResponseWriter, r *http.Request) {
	var req RetrievalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body: "+err.Error()))
		return
	}

	if len(req.Documents) == 0 {
		apperrors.WriteError(w, apperrors.ValidationError("documents are required"))
		return
	}
	for _, k := range req.Ks {
		if err := security.ValidateCutoff(k); err != nil {
			apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
			return
		}
	}

	ks := req.Ks
	if len(ks) == 0 {
		ks = h.DefaultKs
	}

	metrics := h.calc.RetrievalMetrics(req.Documents, ks, req.UseReordered)

	resp := h.record(r.Context(), history.KindRetrieval, req, len(req.Documents), metrics)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		apperrors.WriteError(w, apperrors.ServiceUnavailableError("run history"))
		return
	}

	dataset := r.URL.Query().Get("dataset")
	if dataset != "" {
		if err := security.ValidateDatasetName(dataset); err != nil {
			apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
			return
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.WriteError(w, apperrors.ValidationError("limit must be an integer"))
			return
		}
		if err := security.ValidateListLimit(parsed); err != nil {
			apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRuns(r.Context(), dataset, limit)
	if err != nil {
		apperrors.WriteError(w, apperrors.HistoryError("listing runs", err))
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// record persists the run and publishes its completion event. Both are
// best-effort: a storage or bus failure is logged but never fails the
// evaluation response.
func (h *Handler) record(ctx context.Context, kind string, input any, documents int, metrics map[string]float64) EvaluationResponse {
	resp := EvaluationResponse{
		RunID:     uuid.NewString(),
		Dataset:   h.calc.Config().DatasetName,
		Kind:      kind,
		Documents: documents,
		Metrics:   metrics,
	}
	requestID := reqctx.GetRequestID(ctx)

	if h.runs != nil {
		run := history.Run{
			ID:        resp.RunID,
			Dataset:   resp.Dataset,
			Kind:      kind,
			Documents: documents,
			InputHash: inputFingerprint(input),
			Metrics:   metrics,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.runs.SaveRun(ctx, run); err != nil {
			h.log.WithError(err).Warn("Failed to save run", "run_id", resp.RunID, "request_id", requestID)
		}
	}

	if h.events != nil {
		topic := bus.TopicGenerationCompleted
		if kind == history.KindRetrieval {
			topic = bus.TopicRetrievalCompleted
		}
		event := bus.Event{
			ID:        resp.RunID,
			Type:      kind + ".completed",
			Source:    "rank-eval",
			Timestamp: time.Now().Unix(),
			Payload:   resp,
		}
		if err := h.events.Publish(ctx, topic, event); err != nil {
			h.log.WithError(err).Warn("Failed to publish run event", "run_id", resp.RunID, "topic", topic, "request_id", requestID)
		}
	}

	return resp
}

// inputFingerprint hashes the decoded request so identical batches share a
// fingerprint in the run history. Marshal failures leave it empty.
func inputFingerprint(input any) string {
	payload, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	return hash.InputFingerprint(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
