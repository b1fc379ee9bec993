// Package server exposes the orchestration runtime over HTTP, per §6:
// one JSON endpoint per external interface, implemented against the
// standard library mux in the style of the teacher's task API handler.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/orchestrator"
	"github.com/ashfrnndz21/agentmesh/planner"
	"github.com/ashfrnndz21/agentmesh/tracer"
)

// Handler bundles the long-lived collaborators every endpoint needs.
type Handler struct {
	Orchestrator *orchestrator.Orchestrator
	Catalog      *catalog.Store
	Tracer       *tracer.Tracer
	Logger       core.Logger
}

// New builds a Handler. logger may be nil, in which case a no-op logger
// is used.
func New(o *orchestrator.Orchestrator, store *catalog.Store, trc *tracer.Tracer, logger core.Logger) *Handler {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Handler{Orchestrator: o, Catalog: store, Tracer: trc, Logger: logger}
}

// RegisterRoutes wires every §6 endpoint onto mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/orchestrate", h.methodGuard(http.MethodPost, h.handleOrchestrate))
	mux.HandleFunc("/plan", h.methodGuard(http.MethodPost, h.handlePlan))
	mux.HandleFunc("/agents", h.handleAgentsCollection)
	mux.HandleFunc("/agents/", h.handleAgentByID)
	mux.HandleFunc("/agents/register", h.methodGuard(http.MethodPost, h.handleAgentsRegister))
	mux.HandleFunc("/traces", h.methodGuard(http.MethodGet, h.handleTraces))
	mux.HandleFunc("/traces/", h.handleTraceByID)
	mux.HandleFunc("/metrics", h.methodGuard(http.MethodGet, h.handleMetrics))
	mux.HandleFunc("/health", h.methodGuard(http.MethodGet, h.handleHealth))
}

func (h *Handler) methodGuard(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

// ─── /orchestrate ───────────────────────────────────────────────────────

type orchestrateRequest struct {
	Query           string   `json:"query"`
	SessionID       string   `json:"sessionID"`
	PreferredAgents []string `json:"preferredAgents"`
}

func (h *Handler) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	var req orchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := h.Orchestrator.Orchestrate(r.Context(), req.Query, req.SessionID, req.PreferredAgents)

	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusInternalServerError
		if strings.Contains(resp.Error, "no agents registered") || strings.Contains(resp.Error, "no agents match preferredAgents") {
			status = http.StatusBadRequest
		}
	}
	h.writeJSON(w, status, resp)
}

// ─── /plan ───────────────────────────────────────────────────────────────

type planRequest struct {
	Query string `json:"query"`
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	catalogInfo := catalog.FormatForLLM(h.Catalog.SummaryViews())
	plan, err := planner.Plan(r.Context(), req.Query, catalogInfo, h.Orchestrator.LLM, h.Orchestrator.Cfg, h.Logger)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "plan generation failed: "+err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

// ─── /agents ─────────────────────────────────────────────────────────────

func (h *Handler) handleAgentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.Catalog.List())
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleAgentsRegister(w http.ResponseWriter, r *http.Request) {
	var agent core.AgentDescriptor
	if err := json.NewDecoder(r.Body).Decode(&agent); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if agent.AgentID == "" {
		h.writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	h.Catalog.Register(agent)
	h.writeJSON(w, http.StatusCreated, agent)
}

// handleAgentByID serves DELETE /agents/{id}. The register shortcut
// /agents/register is routed separately by RegisterRoutes, since
// http.ServeMux's longest-prefix-match favors the more specific pattern.
func (h *Handler) handleAgentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/agents/")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "agent id is required")
		return
	}
	if !h.Catalog.Unregister(id) {
		h.writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── /traces ─────────────────────────────────────────────────────────────

func (h *Handler) handleTraces(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", "active", "completed", "all":
	default:
		h.writeError(w, http.StatusBadRequest, "status must be one of active, completed, all")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	h.writeJSON(w, http.StatusOK, h.Tracer.ListSummaries(status, limit))
}

// handleTraceByID serves both GET /traces/{sessionID} and
// GET /traces/{sessionID}/context-evolution.
func (h *Handler) handleTraceByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/traces/")
	contextEvolution := false
	if strings.HasSuffix(path, "/context-evolution") {
		contextEvolution = true
		path = strings.TrimSuffix(path, "/context-evolution")
	}
	sessionID := path
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	trace, ok := h.Tracer.GetTrace(sessionID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "trace not found")
		return
	}
	if contextEvolution {
		h.writeJSON(w, http.StatusOK, trace.ContextEvolution)
		return
	}
	h.writeJSON(w, http.StatusOK, trace)
}

// ─── /metrics, /health ─────────────────────────────────────────────────────

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Tracer.Metrics())
}

type healthResponse struct {
	Status            string `json:"status"`
	ActiveSessions    int    `json:"activeSessions"`
	CompletedSessions int    `json:"completedSessions"`
	TotalEvents       int64  `json:"totalEvents"`
	TotalHandoffs     int64  `json:"totalHandoffs"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := h.Tracer.Metrics()
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:            "ok",
		ActiveSessions:    h.Tracer.ActiveCount(),
		CompletedSessions: h.Tracer.CompletedCount(),
		TotalEvents:       m.TotalEvents,
		TotalHandoffs:     m.TotalHandoffs,
	})
}

// ─── helpers ───────────────────────────────────────────────────────────────

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
