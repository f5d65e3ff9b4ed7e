package http

import (
	"net/http"
	"time"

	"toolrent-backend/internal/service"

	"github.com/gorilla/mux"
)

// RentHandler exposes the rental lifecycle over HTTP
type RentHandler struct {
	rentals service.RentalService
}

func NewRentHandler(rentals service.RentalService) *RentHandler {
	return &RentHandler{rentals: rentals}
}

type createRentRequest struct {
	ToolID    int64      `json:"toolId"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type rejectRentRequest struct {
	Reason string `json:"reason"`
}

// Create handles POST /api/v1/rents
func (h *RentHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req createRentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ToolID <= 0 {
		writeMessage(w, r, http.StatusBadRequest, "toolId is required")
		return
	}

	rent, err := h.rentals.Create(r.Context(), callerID, req.ToolID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rent)
}

// Get handles GET /api/v1/rents/{id}
func (h *RentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid rent id")
		return
	}
	rent, err := h.rentals.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rent)
}

// List handles GET /api/v1/rents?from=...&to=... with RFC 3339 bounds
func (h *RentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
		return
	}

	rents, err := h.rentals.FindByInterval(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rents)
}

// Approve handles POST /api/v1/rents/{id}/approve
func (h *RentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(rentID, callerID int64) (any, error) {
		return h.rentals.Approve(r.Context(), rentID, callerID)
	})
}

// Reject handles POST /api/v1/rents/{id}/reject
func (h *RentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	h.transition(w, r, func(rentID, callerID int64) (any, error) {
		return h.rentals.Reject(r.Context(), rentID, callerID, req.Reason)
	})
}

// Cancel handles POST /api/v1/rents/{id}/cancel
func (h *RentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(rentID, callerID int64) (any, error) {
		return h.rentals.Cancel(r.Context(), rentID, callerID)
	})
}

func (h *RentHandler) transition(w http.ResponseWriter, r *http.Request, fn func(rentID, callerID int64) (any, error)) {
	callerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}
	rentID, ok := pathID(r)
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid rent id")
		return
	}

	rent, err := fn(rentID, callerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rent)
}

func (h *RentHandler) register(router *mux.Router) {
	router.HandleFunc("/api/v1/rents", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/rents", h.List).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/rents/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/rents/{id}/approve", h.Approve).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/rents/{id}/reject", h.Reject).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/rents/{id}/cancel", h.Cancel).Methods(http.MethodPost)
}
