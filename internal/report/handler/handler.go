package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizverify/internal/report"
	runmodels "bizverify/internal/runs/models"
	"bizverify/pkg/platform/httputil"
	"bizverify/pkg/requestcontext"
)

// Service defines the report operations the handler serves.
type Service interface {
	Summary(ctx context.Context, f report.Filter) (*report.Summary, error)
	Records(ctx context.Context, f report.Filter, view report.View) (*report.RecordSet, error)
	MapPoints(ctx context.Context, f report.Filter) ([]report.MapPoint, error)
	ExportCSV(ctx context.Context, w io.Writer, f report.Filter, view report.View) error
	Reload(ctx context.Context) (*report.Snapshot, error)
	Runs(ctx context.Context, limit int) ([]runmodels.RunSummary, error)
}

// Handler wires report endpoints to the report service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a report handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts report endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/summary", h.HandleSummary)
	r.Get("/records", h.HandleRecords)
	r.Get("/map", h.HandleMap)
	r.Get("/export.csv", h.HandleExport)
	r.Post("/refresh", h.HandleRefresh)
	r.Get("/runs", h.HandleRuns)
}

// HandleSummary handles GET /summary.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.service.Summary(ctx, q.Filter)
	if err != nil {
		h.fail(ctx, w, "summary failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleRecords handles GET /records.
func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	set, err := h.service.Records(ctx, q.Filter, q.View)
	if err != nil {
		h.fail(ctx, w, "records listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecordSet(set))
}

// HandleMap handles GET /map.
func (h *Handler) HandleMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	points, err := h.service.MapPoints(ctx, q.Filter)
	if err != nil {
		h.fail(ctx, w, "map points failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MapResponse{Count: len(points), Points: points})
}

// HandleExport handles GET /export.csv. The body is buffered so a failure
// still produces a JSON error instead of a truncated file.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(ctx, &buf, q.Filter, q.View); err != nil {
		h.fail(ctx, w, "csv export failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(q.View)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleRefresh handles POST /refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	snap, err := h.service.Reload(ctx)
	if err != nil {
		h.fail(ctx, w, "refresh failed", err)
		return
	}
	h.logger.InfoContext(ctx, "manual refresh",
		"request_id", requestcontext.RequestID(ctx),
		"run_id", snap.RunID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(snap))
}

// HandleRuns handles GET /runs.
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	runs, err := h.service.Runs(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "run history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func exportFilename(view report.View) string {
	return "submissions-" + string(view) + ".csv"
}
