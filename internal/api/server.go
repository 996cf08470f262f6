// Package api provides the HTTP server for the billing network.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prr-network/prr/internal/app/billing"
	"github.com/prr-network/prr/internal/buildinfo"
	"github.com/prr-network/prr/internal/domain"
	"github.com/prr-network/prr/internal/logging"
)

// Server is the PRR HTTP API server.
type Server struct {
	svc            *billing.Service
	log            *slog.Logger
	metricsEnabled bool
}

// NewServer creates a new API server over svc.
func NewServer(svc *billing.Service) *Server {
	return &Server{svc: svc, log: logging.NewNop()}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetLogger sets the request error logger.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": buildinfo.Version,
		})
	})

	r.Route("/api/clients", func(r chi.Router) {
		r.Get("/", s.handleListClients)
		r.Post("/", s.handleRegisterClient)
		r.Route("/{tax}", func(r chi.Router) {
			r.Get("/", s.handleGetClient)
			r.Put("/name", s.handleRenameClient)
			r.Post("/points", s.handleAdjustPoints)
			r.Post("/friends", s.handleAddFriend)
			r.Delete("/friends/{friend}", s.handleRemoveFriend)
			r.Post("/terminals", s.handleAddTerminal)
			r.Delete("/terminals/{id}", s.handleRemoveTerminal)
		})
	})

	r.Route("/api/terminals", func(r chi.Router) {
		r.Get("/", s.handleListTerminals)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTerminal)
			r.Post("/on", s.handleTurnOn)
			r.Post("/off", s.handleTurnOff)
			r.Post("/toggle", s.handleToggle)
			r.Post("/pay", s.handlePay)
			r.Post("/sms", s.handleSendSMS)
			r.Post("/calls", s.handleStartCall)
			r.Post("/calls/end", s.handleEndCall)
			r.Get("/history", s.handleHistory)
			r.Get("/totals", s.handleTotals)
		})
	})

	r.Get("/api/communications/{id}", s.handleGetCommunication)
	r.Get("/api/tariff/quote", s.handleQuote)

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    kind,
		},
	})
}

// errBadRequest marks malformed input: bad JSON, paths or query values.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// writeDomainError maps err onto a status code and writes it.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, kind, err.Error())
}

func statusFor(err error) (int, string) {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest, "bad_request"
	}
	switch kind := domain.ErrorKind(err); kind {
	case "invalid_state":
		return http.StatusUnprocessableEntity, kind
	case "invalid_transition", "conflict":
		return http.StatusConflict, kind
	case "not_found":
		return http.StatusNotFound, kind
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

func taxParam(r *http.Request, name string) (domain.TaxNumber, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s %q is not a tax number", name, raw)
	}
	return domain.TaxNumber(n), nil
}

func terminalParam(r *http.Request, name string) domain.TerminalID {
	return domain.TerminalID(chi.URLParam(r, name))
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("query %s=%q is not an integer", name, raw)
	}
	return n, nil
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
