package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/s4yuba/x-card-generator/internal/batch"
	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/compositor"
	"github.com/s4yuba/x-card-generator/internal/history"
	"github.com/s4yuba/x-card-generator/internal/models"
	"github.com/s4yuba/x-card-generator/internal/render"
)

type Handlers struct {
	orchestrator *batch.Orchestrator
	compositor   *compositor.Compositor
	history      *history.Store
	logger       *slog.Logger
}

func NewHandlers(orch *batch.Orchestrator, comp *compositor.Compositor, hist *history.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		orchestrator: orch,
		compositor:   comp,
		history:      hist,
		logger:       logger,
	}
}

// FrameSize is a card frame in millimeters.
type FrameSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// LayoutRequest is the caller-facing tiling configuration.
type LayoutRequest struct {
	PageSize    string     `json:"page_size"`
	Columns     int        `json:"columns"`
	Rows        int        `json:"rows"`
	Spacing     float64    `json:"spacing"`
	DoubleSided bool       `json:"double_sided"`
	SplitSides  bool       `json:"split_sides"`
	FrontFrame  *FrameSize `json:"front_frame_size,omitempty"`
	BackFrame   *FrameSize `json:"back_frame_size,omitempty"`
}

// CardRequest generates one card document.
type CardRequest struct {
	URL    string         `json:"url"`
	Layout *LayoutRequest `json:"layout,omitempty"`
}

// BatchRequest generates one document from many profiles.
type BatchRequest struct {
	URLs   []string       `json:"urls"`
	Layout *LayoutRequest `json:"layout,omitempty"`
}

// GenerateCard handles single-card generation.
func (h *Handlers) GenerateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "InvalidInput", "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "InvalidInput", "url is required")
		return
	}

	cfg := tileConfig(req.Layout)
	tmpl := render.DefaultTemplate()

	card, err := h.orchestrator.ProcessOne(r.Context(), req.URL, tmpl, cfg.Duplex != compositor.DuplexNone)
	if err != nil {
		h.respondCardError(w, err)
		return
	}

	cards := []*models.Card{card}
	pdf, err := h.compositor.Compose(cards, cfg, compositor.NewPDFWriter(cfg.PageSize))
	if err != nil {
		h.respondCardError(w, err)
		return
	}

	h.respondPDF(w, pdf, compositor.DocumentFilename(cards), nil)
}

// GenerateBatch handles multi-card generation. Partial failure is a
// success with skip headers; only an empty result is an error.
func (h *Handlers) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "InvalidInput", "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		h.respondError(w, http.StatusBadRequest, "InvalidInput", "urls is required")
		return
	}

	cfg := tileConfig(req.Layout)
	tmpl := render.DefaultTemplate()

	result, err := h.orchestrator.ProcessBatch(r.Context(), req.URLs, tmpl, cfg.Duplex != compositor.DuplexNone)
	if err != nil {
		h.respondCardError(w, err)
		return
	}

	pdf, err := h.compositor.Compose(result.Succeeded, cfg, compositor.NewPDFWriter(cfg.PageSize))
	if err != nil {
		h.respondCardError(w, err)
		return
	}

	h.respondPDF(w, pdf, compositor.DocumentFilename(result.Succeeded), result)
}

// GetRun returns a recorded batch run with its skipped URLs.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.respondError(w, http.StatusNotFound, "NotFound", "run history is not enabled")
		return
	}

	runID := chi.URLParam(r, "runID")
	run, err := h.history.GetRun(r.Context(), runID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "NotFound", "run not found")
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

func tileConfig(layout *LayoutRequest) compositor.TileConfig {
	cfg := compositor.DefaultTileConfig()
	if layout == nil {
		return cfg
	}

	if layout.PageSize == string(compositor.PageLetter) {
		cfg.PageSize = compositor.PageLetter
	}
	cfg.Columns = layout.Columns
	cfg.Rows = layout.Rows
	if layout.Spacing > 0 {
		cfg.Spacing = layout.Spacing
	}
	if layout.FrontFrame != nil {
		cfg.CardWidth = layout.FrontFrame.W
		cfg.CardHeight = layout.FrontFrame.H
	}
	if layout.BackFrame != nil {
		cfg.BackWidth = layout.BackFrame.W
		cfg.BackHeight = layout.BackFrame.H
	}
	switch {
	case layout.SplitSides:
		cfg.Duplex = compositor.DuplexSplit
	case layout.DoubleSided:
		cfg.Duplex = compositor.DuplexSequential
	}
	return cfg
}

func (h *Handlers) respondPDF(w http.ResponseWriter, pdf []byte, filename string, result *models.BatchResult) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if result != nil {
		w.Header().Set("X-Run-Id", result.RunID)
		w.Header().Set("X-Skipped-Count", fmt.Sprintf("%d", result.FailedCount()))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("failed to write PDF response", "error", err)
	}
}

// respondCardError maps stable codes onto HTTP statuses. Unclassified
// errors surface as a generic 500; the cause stays in the logs.
func (h *Handlers) respondCardError(w http.ResponseWriter, err error) {
	var ce *carderr.Error
	if !errors.As(err, &ce) {
		h.logger.Error("unclassified failure", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Internal", "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch ce.Code {
	case carderr.CodeInvalidURL, carderr.CodeInvalidLayoutConfig, carderr.CodeBatchTooLarge:
		status = http.StatusBadRequest
	case carderr.CodeNoValidProfiles, carderr.CodeMissingRequiredField:
		status = http.StatusUnprocessableEntity
	case carderr.CodeExtractionTimeout:
		status = http.StatusGatewayTimeout
	}

	h.respondError(w, status, string(ce.Code), ce.Message)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, map[string]string{"code": code, "message": message})
}
