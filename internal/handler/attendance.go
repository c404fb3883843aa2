package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"absensi/internal/geo"
	"absensi/internal/i18n"
	"absensi/internal/model"
	"absensi/internal/service"
	"absensi/internal/session"
)

type AttendanceHandler struct {
	svc *service.AttendanceService
}

func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// CheckInRequest is the JSON body of a check-in. Status is empty for an
// automatic check-in. Lat and Lng are what the device reported, if anything.
type CheckInRequest struct {
	Status model.AttendanceStatus `json:"status"`
	Lat    *float64               `json:"lat"`
	Lng    *float64               `json:"lng"`
}

type CheckInResponse struct {
	Message string                    `json:"message"`
	Record  *model.AttendanceRecord   `json:"record"`
	History []*model.AttendanceRecord `json:"history"`
}

type HistoryResponse struct {
	Records []*model.AttendanceRecord `json:"records"`
}

// HandleCheckIn records one check-in for the caller.
func (h *AttendanceHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	// An empty body is an automatic check-in without location.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	result, err := h.svc.CheckIn(r.Context(), session.FromContext(r.Context()), service.CheckInRequest{
		Override: req.Status,
		Locator:  geo.Reported{Lat: req.Lat, Lng: req.Lng},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	history := result.History
	if history == nil {
		history = []*model.AttendanceRecord{}
	}
	writeJSONStatus(w, http.StatusCreated, CheckInResponse{
		Message: i18n.T(r.Context(), "checkin_success", map[string]any{"Status": result.Record.Status}),
		Record:  result.Record,
		History: history,
	})
}

// HandleHistory returns the caller's most recent records.
func (h *AttendanceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	records, err := h.svc.History(r.Context(), sess.Identity.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*model.AttendanceRecord{}
	}
	writeJSON(w, HistoryResponse{Records: records})
}

// RegisterRoutes registers all attendance routes on the given mux.
func (h *AttendanceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/attendance/checkin", RequireSession(h.HandleCheckIn))
	mux.HandleFunc("GET /api/attendance/history", RequireSession(h.HandleHistory))
}
