package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"absensi/internal/export"
	"absensi/internal/i18n"
	"absensi/internal/model"
	"absensi/internal/service"
)

type AdminHandler struct {
	svc *service.AdminService
	loc *time.Location
}

func NewAdminHandler(svc *service.AdminService, loc *time.Location) *AdminHandler {
	return &AdminHandler{svc: svc, loc: loc}
}

type StatsResponse struct {
	Range service.DateRange `json:"range"`
	Stats model.Stats       `json:"stats"`
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) (*service.Dashboard, bool) {
	q := r.URL.Query()
	rng, err := h.svc.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	d, err := h.svc.Dashboard(r.Context(), rng, q.Get("sort"))
	if err != nil {
		h.fetchFailed(w, r, err)
		return nil, false
	}
	return d, true
}

func (h *AdminHandler) fetchFailed(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "admin fetch failed", "error", err)
	writeJSONStatus(w, http.StatusInternalServerError, errorResponse{Error: i18n.T(r.Context(), "admin_fetch_failed")})
}

// HandleRecords returns the table rows and chart of a date range.
func (h *AdminHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	writeJSON(w, d)
}

// HandleStats returns only the chart buckets of a date range.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	writeJSON(w, StatsResponse{Range: d.Range, Stats: d.Stats})
}

// HandleExportCSV downloads the records of a date range as CSV.
func (h *AdminHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

// HandleExportXLSX downloads the records of a date range as a workbook.
func (h *AdminHandler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

type writeFunc func(io.Writer, []*model.AttendanceRecord, *time.Location) error

func (h *AdminHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write writeFunc) {
	q := r.URL.Query()
	rng, err := h.svc.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := h.svc.Records(r.Context(), rng)
	if err != nil {
		h.fetchFailed(w, r, err)
		return
	}

	// Render first so a failure can still produce an error response.
	var buf bytes.Buffer
	if err := write(&buf, records, h.loc); err != nil {
		writeError(w, r, fmt.Errorf("export %s: %w", ext, err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(rng.Start, rng.End, ext)))
	w.Write(buf.Bytes())
}

// RegisterRoutes registers the admin API routes and the browser download links.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/admin/records", RequireAdmin(h.HandleRecords))
	mux.HandleFunc("GET /api/admin/stats", RequireAdmin(h.HandleStats))
	mux.HandleFunc("GET /api/admin/export.csv", RequireAdmin(h.HandleExportCSV))
	mux.HandleFunc("GET /api/admin/export.xlsx", RequireAdmin(h.HandleExportXLSX))
	mux.HandleFunc("GET /admin/export.csv", RequireAdmin(h.HandleExportCSV))
	mux.HandleFunc("GET /admin/export.xlsx", RequireAdmin(h.HandleExportXLSX))
}
