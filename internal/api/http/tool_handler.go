package http

import (
	"net/http"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/service"

	"github.com/gorilla/mux"
)

type ToolHandler struct {
	tools service.ToolService
}

func NewToolHandler(tools service.ToolService) *ToolHandler {
	return &ToolHandler{tools: tools}
}

type addToolRequest struct {
	Name               string `json:"name"`
	PricePerDayCents   int64  `json:"pricePerDayCents"`
	PricePerWeekCents  int64  `json:"pricePerWeekCents"`
	PricePerMonthCents int64  `json:"pricePerMonthCents"`
}

// Add handles POST /api/v1/tools. The caller becomes the owner.
func (h *ToolHandler) Add(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req addToolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool := &domain.Tool{
		Name:               req.Name,
		PricePerDayCents:   req.PricePerDayCents,
		PricePerWeekCents:  req.PricePerWeekCents,
		PricePerMonthCents: req.PricePerMonthCents,
	}
	if err := h.tools.AddTool(r.Context(), callerID, tool); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

// Get handles GET /api/v1/tools/{id}
func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid tool id")
		return
	}
	tool, err := h.tools.GetTool(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) register(router *mux.Router) {
	router.HandleFunc("/api/v1/tools", h.Add).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/tools/{id}", h.Get).Methods(http.MethodGet)
}
