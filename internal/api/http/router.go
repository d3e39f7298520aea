package http

import (
	"net/http"

	"groupkeeper-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the front-end API. Route names key the security levels
// in config.EndpointSecurityConfig.
func NewRouter(h *Handler, tm security.TokenManager, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog, NewAuthMiddleware(tm).Handler)

	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet).Name("healthz")
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("metrics")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/keys/redeem", h.Redeem).Methods(http.MethodPost).Name("keys.redeem")
	api.HandleFunc("/keys", h.GenerateKeys).Methods(http.MethodPost).Name("keys.generate")
	api.HandleFunc("/keys", h.ListKeys).Methods(http.MethodGet).Name("keys.list")
	api.HandleFunc("/keys", h.WipeKeys).Methods(http.MethodDelete).Name("keys.wipe")

	api.HandleFunc("/members/{username}", h.MemberInfo).Methods(http.MethodGet).Name("members.info")
	api.HandleFunc("/members/{username}", h.Kick).Methods(http.MethodDelete).Name("members.kick")
	api.HandleFunc("/members/{username}/promote", h.Promote).Methods(http.MethodPost).Name("members.promote")
	api.HandleFunc("/members/{username}/demote", h.Demote).Methods(http.MethodPost).Name("members.demote")
	api.HandleFunc("/members/{username}/rank", h.SetRank).Methods(http.MethodPut).Name("members.rank")

	return router
}
