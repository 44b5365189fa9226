// Package httpapi exposes the review pipeline over HTTP: submit documents,
// fetch persisted reports, and inspect the rubric.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/c360studio/lrrit/config"
	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/evidence/ingest"
	"github.com/c360studio/lrrit/metrics"
	"github.com/c360studio/lrrit/publish"
	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
	"github.com/c360studio/lrrit/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxUploadSize limits submitted documents.
const maxUploadSize = 10 * 1024 * 1024 // 10MB

// Handler serves the review HTTP API.
type Handler struct {
	rubrics   *rubric.Source
	collab    review.Collaborator
	reports   *store.Store
	publisher *publish.Publisher
	fetcher   *ingest.Fetcher
	parsers   *ingest.Registry
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	eval      config.EvalConfig
	logger    *slog.Logger
}

// Options wires the handler's collaborators. Store, Publisher, Metrics, and
// Gatherer are optional.
type Options struct {
	Rubrics   *rubric.Source
	Collab    review.Collaborator
	Store     *store.Store
	Publisher *publish.Publisher
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Eval      config.EvalConfig
	Logger    *slog.Logger
}

// New creates a Handler.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		rubrics:   opts.Rubrics,
		collab:    opts.Collab,
		reports:   opts.Store,
		publisher: opts.Publisher,
		fetcher:   ingest.NewFetcher(),
		parsers:   ingest.NewRegistry(),
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		eval:      opts.Eval,
		logger:    logger,
	}
}

// Router builds the route table.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/reviews", h.handleSubmitReview)
	mux.HandleFunc("GET /api/reviews", h.handleListReviews)
	mux.HandleFunc("GET /api/reviews/{id}", h.handleGetReview)
	mux.HandleFunc("GET /api/rubric", h.handleListRubric)
	mux.HandleFunc("GET /api/rubric/{id}", h.handleGetDimension)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	if h.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// submitRequest is the JSON body for URL submissions.
type submitRequest struct {
	URL        string   `json:"url"`
	Dimensions []string `json:"dimensions,omitempty"`
}

// reviewResponse wraps a report with any per-dimension failures.
type reviewResponse struct {
	Report   *review.Report `json:"report"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	pack, dimensions, err := h.buildPack(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(dimensions) == 0 {
		dimensions = h.eval.Dimensions
	}

	session := review.NewSession(h.rubrics.Snapshot(), h.collab,
		review.WithLogger(h.logger),
		review.WithTimeout(h.eval.Timeout.Std()),
		review.WithConcurrency(h.eval.Concurrency),
		review.WithPartialResults(h.eval.Partial),
		review.WithMetrics(h.metrics))

	results, evalErr := session.Evaluate(r.Context(), pack, dimensions)
	if evalErr != nil && len(results) == 0 {
		status := http.StatusBadGateway
		if errors.Is(evalErr, rubric.ErrUnknownDimension) ||
			errors.Is(evalErr, review.ErrDuplicateDimension) {
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, evalErr.Error())
		return
	}

	report, err := review.Aggregate(results)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	report.DocumentID = pack.ReportID
	report.DocumentTitle = pack.Title
	report.Source = pack.Source

	if h.reports != nil {
		if err := h.reports.SaveReport(r.Context(), report); err != nil {
			h.logger.Error("save report failed", "report_id", report.ID, "error", err)
		}
	}
	if err := h.publisher.PublishReport(r.Context(), report); err != nil {
		h.logger.Warn("publish report failed", "report_id", report.ID, "error", err)
	}
	h.metrics.RecordReport()

	resp := reviewResponse{Report: report}
	if evalErr != nil {
		resp.Warnings = append(resp.Warnings, evalErr.Error())
	}
	writeJSON(w, http.StatusCreated, resp)
}

// buildPack constructs the evidence pack from a multipart upload or a JSON
// URL submission.
func (h *Handler) buildPack(r *http.Request) (*evidence.Pack, []string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, nil, fmt.Errorf("parse upload: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, nil, fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			return nil, nil, fmt.Errorf("read upload: %w", err)
		}

		doc, err := h.parsers.Parse(header.Filename, content)
		if err != nil {
			return nil, nil, err
		}

		reportID := ingest.Slug(strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)))
		pack, err := ingest.Build(reportID, doc.Title, header.Filename, doc.Body)
		if err != nil {
			return nil, nil, err
		}
		return pack, r.MultipartForm.Value["dimensions"], nil
	}

	var req submitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&req); err != nil {
		return nil, nil, fmt.Errorf("parse request body: %w", err)
	}
	if req.URL == "" {
		return nil, nil, fmt.Errorf("either a file upload or a url is required")
	}

	pack, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		return nil, nil, err
	}
	return pack, req.Dimensions, nil
}

func (h *Handler) handleGetReview(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeJSONError(w, http.StatusNotImplemented, "report persistence is disabled")
		return
	}

	report, err := h.reports.GetReport(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeJSONError(w, http.StatusNotImplemented, "report persistence is disabled")
		return
	}

	list, err := h.reports.ListReports(r.Context(), 50)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (h *Handler) handleListRubric(w http.ResponseWriter, _ *http.Request) {
	registry := h.rubrics.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"dimensions": registry.List()})
}

func (h *Handler) handleGetDimension(w http.ResponseWriter, r *http.Request) {
	dim, err := h.rubrics.Snapshot().Get(r.PathValue("id"))
	if errors.Is(err, rubric.ErrUnknownDimension) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dim)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
