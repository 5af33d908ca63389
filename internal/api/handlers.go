package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zaiddev/gulf-price-tracker/internal/database"
	"github.com/zaiddev/gulf-price-tracker/internal/jobs"
	"github.com/zaiddev/gulf-price-tracker/internal/scraper"
)

type Handlers struct {
	jobs   *jobs.Manager
	logger *slog.Logger
}

func NewHandlers(jobs *jobs.Manager, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobs,
		logger: logger,
	}
}

// Routes mounts all API endpoints on a router.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs/{id}", h.GetJob)
		r.Get("/jobs/{id}/listings", h.GetJobListings)
		r.Get("/markets", h.GetMarkets)
	})
}

// CreateJobRequest asks for one market+query scrape.
type CreateJobRequest struct {
	Market string `json:"market"`
	Query  string `json:"query"`
}

func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Market == "" {
		req.Market = scraper.DefaultMarket
	}
	if !scraper.KnownMarket(req.Market) {
		h.respondError(w, http.StatusBadRequest, "unknown market")
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), req.Market, req.Query)
	if errors.Is(err, scraper.ErrUnknownMarket) {
		h.respondError(w, http.StatusBadRequest, "unknown market")
		return
	}
	if err != nil {
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusAccepted, job)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) GetJobListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.jobs.JobListings(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get job listings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get listings")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(listings),
		"listings": listings,
	})
}

func (h *Handlers) GetMarkets(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{"markets": scraper.Markets()})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}
