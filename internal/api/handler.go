// Package api implements the REST surface of the pipeline.
//
// Routes:
//
//	GET   /health                            → liveness
//	GET   /api/applications?job_id=          → applications grouped by stage
//	GET   /api/applications/{id}             → one application
//	PATCH /api/applications/{id}/stage       → move to a new stage
//	GET   /api/applications/{id}/history     → stage history
//	GET   /api/jobs                          → jobs with hired counts
//	POST  /api/jobs/sweep                    → close jobs at headcount now
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"edluar/pipeline/internal/pipeline"
)

// Handler holds shared dependencies.
type Handler struct {
	svc     *pipeline.Service
	log     *slog.Logger
	version string
}

// NewHandler returns a configured Handler.
func NewHandler(svc *pipeline.Service, logger *slog.Logger, version string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger.With("component", "api"), version: version}
}

// Router builds the mux with every route mounted.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.Use(enableCORS)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/applications", h.listApplications).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/applications/{id}", h.getApplication).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/applications/{id}/stage", h.updateStage).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/applications/{id}/history", h.history).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/jobs", h.listJobs).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/jobs/sweep", h.sweep).Methods(http.MethodPost, http.MethodOptions)
	return r
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "edluar-pipeline",
		"version": h.version,
	})
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.svc.Applications(r.Context(), r.URL.Query().Get("job_id"))
	if err != nil {
		h.fail(w, "listApplications", err)
		return
	}
	jsonOK(w, grouped)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Application(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, "getApplication", err)
		return
	}
	jsonOK(w, app)
}

// stageRequest is the PATCH /stage body.
type stageRequest struct {
	Status string `json:"status"`
}

// stageResponse keeps suggestAction present (null) when there is no hint.
type stageResponse struct {
	Application   any     `json:"application"`
	SuggestAction *string `json:"suggestAction"`
}

func (h *Handler) updateStage(w http.ResponseWriter, r *http.Request) {
	var body stageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		jsonError(w, "body must contain status", http.StatusBadRequest)
		return
	}

	upd, err := h.svc.UpdateStage(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		h.fail(w, "updateStage", err)
		return
	}

	resp := stageResponse{Application: upd.Application}
	if upd.SuggestAction != "" {
		hint := string(upd.SuggestAction)
		resp.SuggestAction = &hint
	}
	jsonOK(w, resp)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, "history", err)
		return
	}
	jsonOK(w, events)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Jobs(r.Context())
	if err != nil {
		h.fail(w, "listJobs", err)
		return
	}
	jsonOK(w, jobs)
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	closed, err := h.svc.SweepFilledJobs(r.Context())
	if err != nil {
		h.fail(w, "sweep", err)
		return
	}
	jsonOK(w, map[string]any{"closed": len(closed), "jobs": closed})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// fail maps domain errors to HTTP status codes.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var ve *pipeline.ValidationError
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	default:
		h.log.Error(op+" failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
