package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/history"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RiskService answers the queries exposed under /v1.
type RiskService interface {
	Assess(ctx context.Context, hazard domain.Hazard, loc domain.Location) (domain.RiskAssessment, error)
	AssessAll(ctx context.Context, loc domain.Location) ([]domain.RiskAssessment, error)
	Events(ctx context.Context, loc domain.Location, start, end string) (assess.EventReport, error)
	Indices(ctx context.Context, loc domain.Location) (assess.IndexReport, error)
	History(ctx context.Context, hazard domain.Hazard, loc domain.Location, years int) (history.Analysis, error)
}

var errBadQuery = errors.New("invalid query parameter")

// Server exposes the risk API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	service    RiskService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /v1 routes.
func NewServer(addr string, service RiskService, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/risk", s.handleAssessAll)
	mux.HandleFunc("GET /v1/risk/{hazard}", s.handleAssess)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/indices", s.handleIndices)
	mux.HandleFunc("GET /v1/history/{hazard}", s.handleHistory)

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

func (s *Server) handleAssessAll(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.service.AssessAll(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	hazard, err := domain.ParseHazard(r.PathValue("hazard"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loc, err := locationFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.service.Assess(r.Context(), hazard, loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	out, err := s.service.Events(r.Context(), loc, q.Get("start"), q.Get("end"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.service.Indices(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hazard, err := domain.ParseHazard(r.PathValue("hazard"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loc, err := locationFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	years := 0
	if v := r.URL.Query().Get("years"); v != "" {
		if years, err = strconv.Atoi(v); err != nil {
			s.writeError(w, r, errBadQuery)
			return
		}
	}
	out, err := s.service.History(r.Context(), hazard, loc, years)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

// writeError maps request errors to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, domain.ErrInvalidLocation),
		errors.Is(err, domain.ErrUnknownHazard),
		errors.Is(err, domain.ErrInvalidWindow):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func locationFrom(r *http.Request) (domain.Location, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return domain.Location{}, errBadQuery
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return domain.Location{}, errBadQuery
	}
	return domain.Location{Lat: lat, Lon: lon}, nil
}
