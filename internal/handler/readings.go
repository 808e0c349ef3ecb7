package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/middleware"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/service"
)

// ReadingsHandler handles HTTP requests for device ingest and the data
// behind the dashboard, history and report views.
type ReadingsHandler struct {
	service *service.ReadingsService
}

// NewReadingsHandler creates a new ReadingsHandler.
func NewReadingsHandler(svc *service.ReadingsService) *ReadingsHandler {
	return &ReadingsHandler{service: svc}
}

// HandleIngest handles POST /api/v1/readings requests from devices.
func (h *ReadingsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrIOPRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrStoreUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse("store unavailable"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleDashboard handles GET /api/v1/dashboard requests.
func (h *ReadingsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.Dashboard(r.Context(), sess.Email)
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleHistory handles GET /api/v1/history requests. start and end are
// date-only query parameters; invalid bounds fall back to the last week.
func (h *ReadingsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	resp, err := h.service.History(r.Context(), sess.Email, start, end)
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleReport handles GET /api/v1/report requests.
func (h *ReadingsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.Report(r.Context(), sess.Email)
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLatest handles GET /api/v1/readings/latest requests. It needs only a
// session email, not a verified login, and answers an empty object when
// there is nothing to show.
func (h *ReadingsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || sess.Email == "" {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	resp, err := h.service.LatestReading(r.Context(), sess.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		h.writeReadError(w, err)
		return
	}
	if resp == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ReadingsHandler) writeReadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("store unavailable"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
