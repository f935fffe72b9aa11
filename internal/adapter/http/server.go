// Package http exposes the ingestion trigger endpoint alongside health,
// readiness, and metrics routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IngestDispatcher routes a validated ingestion request and always returns a
// structured response.
type IngestDispatcher interface {
	Dispatch(ctx context.Context, req domain.Request) domain.Response
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ingestPayload is the wire shape of an ingestion trigger. Absence of both
// fields selects daily mode.
type ingestPayload struct {
	Historical bool   `json:"historical"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Server exposes the ingestion HTTP surface.
type Server struct {
	httpServer *http.Server
	dispatcher IngestDispatcher
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /ingest, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, dispatcher IngestDispatcher, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// No write timeout: a historical backfill runs to completion
			// within the request.
			IdleTimeout: 60 * time.Second,
		},
		dispatcher: dispatcher,
		validate:   validator.New(),
		logger:     logger,
	}

	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleIngest validates the payload into the tagged request union and hands
// it to the dispatcher. Shape mismatches are rejected here with 400; the
// dispatcher's own contract stays 200/500.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), req)
	writeJSON(w, resp.Status, resp)
}

func (s *Server) parseRequest(r *http.Request) (domain.Request, error) {
	var payload ingestPayload

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return domain.Request{}, errors.New("invalid request body: " + err.Error())
	}

	if err := s.validate.Struct(payload); err != nil {
		return domain.Request{}, errors.New("invalid date, expected YYYY-MM-DD")
	}

	switch {
	case payload.Historical && payload.Date != "":
		return domain.Request{}, errors.New("historical and date are mutually exclusive")
	case payload.Historical:
		return domain.Request{Mode: domain.ModeHistorical}, nil
	case payload.Date != "":
		date, err := time.Parse(time.DateOnly, payload.Date)
		if err != nil {
			return domain.Request{}, errors.New("invalid date, expected YYYY-MM-DD")
		}
		return domain.Request{Mode: domain.ModeSingleDate, Date: date}, nil
	default:
		return domain.Request{Mode: domain.ModeDaily}, nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
