// Package http exposes the rental services as a JSON API.
package http

import (
	"net/http"

	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Tools    *ToolHandler
	Rents    *RentHandler
	Payments *PaymentHandler
}

// NewRouter wires every route behind request id, metrics and auth middleware.
// Auth runs per route so the security level can be looked up by path template.
func NewRouter(h Handlers, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(metrics.HTTPMetricsMiddleware)
	router.Use(NewAuthMiddleware(tm).Handler)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	h.Tools.register(router)
	h.Rents.register(router)
	h.Payments.register(router)

	// mux skips router middleware when nothing matches
	router.NotFoundHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusNotFound, "Not found")
	}))
	router.MethodNotAllowedHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	}))
	return router
}
