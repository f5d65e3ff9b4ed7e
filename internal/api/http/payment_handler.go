package http

import (
	"net/http"
	"strconv"
	"strings"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/service"

	"github.com/gorilla/mux"
)

type PaymentHandler struct {
	payments        service.PaymentService
	defaultCurrency string
}

func NewPaymentHandler(payments service.PaymentService, defaultCurrency string) *PaymentHandler {
	return &PaymentHandler{payments: payments, defaultCurrency: defaultCurrency}
}

// createOrderRequest either references a stored rent or carries an explicit
// amount for a pay-first checkout.
type createOrderRequest struct {
	RentID      int64  `json:"rentId"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// CreateOrder handles POST /api/v1/payments/orders
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = h.defaultCurrency
	}

	var (
		order *domain.Order
		err   error
	)
	if req.RentID > 0 {
		order, err = h.payments.CreateOrder(r.Context(), callerID, req.RentID, currency)
	} else {
		amount := domain.Money{Currency: currency, ValueCents: req.AmountCents}
		order, err = h.payments.CreatePayFirstOrder(r.Context(), amount, req.Description)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// Capture handles GET /api/v1/payments/capture, the provider's return URL.
// The provider appends ?token=<orderID>; rentId is absent for pay-first orders.
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderID := strings.TrimSpace(q.Get("token"))
	if orderID == "" {
		writeMessage(w, r, http.StatusBadRequest, "Missing token parameter")
		return
	}

	rentID := domain.NoRentID
	if raw := q.Get("rentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			writeMessage(w, r, http.StatusBadRequest, "Invalid rentId parameter")
			return
		}
		rentID = id
	}

	result, err := h.payments.CaptureOrder(r.Context(), orderID, rentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) register(router *mux.Router) {
	router.HandleFunc("/api/v1/payments/orders", h.CreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/payments/capture", h.Capture).Methods(http.MethodGet)
}
