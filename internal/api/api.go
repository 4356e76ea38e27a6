// Package api serves the read-only event query API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/store"
)

// EventQuerier is the slice of the store the API needs.
type EventQuerier interface {
	QueryEvents(ctx context.Context, filter store.Filter) ([]models.Event, int, error)
}

// Server holds the API dependencies and pagination policy.
type Server struct {
	log             zerolog.Logger
	store           EventQuerier
	defaultPageSize int
	maxPageSize     int
}

// NewServer creates an API server over the given store.
func NewServer(log zerolog.Logger, querier EventQuerier, defaultPageSize, maxPageSize int) *Server {
	return &Server{
		log:             log,
		store:           querier,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", s.handleEvents)
	})

	return r
}

// eventsResponse is the JSON envelope for event queries.
type eventsResponse struct {
	Events     []models.Event `json:"events"`
	Pagination pagination     `json:"pagination"`
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := s.filterFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, total, err := s.store.QueryEvents(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("event query failed")
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	if events == nil {
		events = []models.Event{}
	}

	pages := 0
	if total > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}

	s.writeJSON(w, http.StatusOK, eventsResponse{
		Events: events,
		Pagination: pagination{
			Total: total,
			Page:  filter.Page,
			Limit: filter.Limit,
			Pages: pages,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filterFromQuery parses and bounds the query parameters.
func (s *Server) filterFromQuery(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()

	filter := store.Filter{
		Region:   q.Get("region"),
		City:     q.Get("city"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		Query:    q.Get("q"),
		Venue:    q.Get("venue"),
		Category: q.Get("category"),
		Page:     1,
		Limit:    s.defaultPageSize,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return store.Filter{}, errInvalidParam("page", raw)
		}
		filter.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return store.Filter{}, errInvalidParam("limit", raw)
		}
		if limit > s.maxPageSize {
			limit = s.maxPageSize
		}
		filter.Limit = limit
	}

	for _, date := range []string{filter.DateFrom, filter.DateTo} {
		if date != "" && !models.IsValidISODate(date) {
			return store.Filter{}, errInvalidParam("date", date)
		}
	}

	return filter, nil
}

type paramError struct {
	param, value string
}

func (e paramError) Error() string {
	return "invalid " + e.param + " parameter: " + e.value
}

func errInvalidParam(param, value string) error {
	return paramError{param: param, value: value}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
