package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.Use(hlog.NewHandler(s.ctx.logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(accessLogger())
	r.Use(addCorsHeaders)

	r.HandleFunc("/health", s.handle(handleHealth)).Methods("GET", "OPTIONS")
	r.HandleFunc("/", s.handle(handleHome)).Methods("GET")
	r.HandleFunc("/buy", s.handle(handleBuy)).Methods("GET")
	r.HandleFunc("/upgrade", s.handle(handleUpgradeInfo)).Methods("GET")
	r.HandleFunc("/upgrade", s.handle(handleUpgradeCode)).Methods("POST", "OPTIONS")
	r.HandleFunc("/pro", s.handle(handleProReturn)).Methods("GET")
	r.HandleFunc("/login", s.handle(handleLogin)).Methods("POST", "OPTIONS")
	r.HandleFunc("/logout", s.handle(handleLogout)).Methods("GET")
	r.HandleFunc("/webhook", s.handle(handleWebhook)).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Quota-gated card generation.
	generateR := r.PathPrefix("/generate").Subrouter()
	generateR.Use(rateLimitMiddleware(generateRateInterval, generateRateBurst))
	generateR.Use(quotaMiddleware(s.ctx))
	generateR.HandleFunc("", s.handle(handleGenerate)).Methods("POST", "OPTIONS")

	return r
}

func accessLogger() func(http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})
}
