package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triggers-triumphs-api/src/billing"
	"triggers-triumphs-api/src/cards"
	"triggers-triumphs-api/src/config"
	"triggers-triumphs-api/src/entitlement"
	"triggers-triumphs-api/src/quota"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// shutdownTimeout is how long in-flight requests get to finish after a
// termination signal.
const shutdownTimeout = 5 * time.Second

// appContext carries the collaborators every handler needs.
type appContext struct {
	config    config.Config
	logger    zerolog.Logger
	sessions  sessions.Store
	quota     quota.Store
	pros      entitlement.Store
	billing   billing.Service
	generator cards.Generator
}

// Options wires the server's collaborators.
type Options struct {
	Logger       zerolog.Logger
	Sessions     sessions.Store
	Quota        quota.Store
	Entitlements entitlement.Store
	Billing      billing.Service
	Generator    cards.Generator
}

// Server is an instance of the Triggers & Triumphs API server.
type Server struct {
	ctx    appContext
	router *mux.Router
}

// New assembles the router and returns a Server ready to Run.
func New(cfg config.Config, opts Options) *Server {
	s := &Server{
		ctx: appContext{
			config:    cfg,
			logger:    opts.Logger,
			sessions:  opts.Sessions,
			quota:     opts.Quota,
			pros:      opts.Entitlements,
			billing:   opts.Billing,
			generator: opts.Generator,
		},
	}
	s.router = s.routes()
	return s
}

// Handler exposes the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API until SIGINT or SIGTERM, then drains connections.
func (s *Server) Run() error {
	listenAddr := fmt.Sprintf(":%d", s.ctx.config.Port)

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.ctx.logger.Info().Msgf("web server now listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.ctx.logger.Info().Msgf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

// appHandler is a handler that reports its status code and any error to be
// rendered as JSON.
type appHandler func(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error)

// handle adapts an appHandler onto http.HandlerFunc.
func (s *Server) handle(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if code, err := h(s.ctx, w, r); err != nil {
			writeError(s.ctx.logger, code, err.Error(), w)
		}
	}
}

// ErrorRes is a JSON response containing an error message from the API.
type ErrorRes struct {
	Message string `json:"message"`
	Upgrade string `json:"upgrade,omitempty"`
}

func writeError(logger zerolog.Logger, code int, message string, w http.ResponseWriter) {
	logger.Info().Msg(message)
	writeJSON(w, code, ErrorRes{Message: message})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
