// Package api - thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, planner orchestration,
// output serialization. The API NEVER performs import logic.
package api

import (
	"encoding/json"
	"net/http"

	"import-planner/core/ledger"
	"import-planner/core/planner"
	"import-planner/core/types"
	"import-planner/internal/errors"
)

// Server is the API server
type Server struct {
	mux     *http.ServeMux
	planner *planner.Planner
	ledger  *ledger.Ledger
	version string
}

// NewServer creates a new API server
func NewServer(version string, p *planner.Planner, l *ledger.Ledger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		planner: p,
		ledger:  l,
		version: version,
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /plan", s.handlePlan)
	s.mux.HandleFunc("GET /bindings", s.handleListBindings)
	s.mux.HandleFunc("GET /bindings/history", s.handleBindingHistory)
	s.mux.HandleFunc("DELETE /bindings", s.handleUnbind)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handlePlan handles POST /plan
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Requests) == 0 {
		s.writeError(w, "EMPTY_BATCH", "no import requests in body", http.StatusBadRequest)
		return
	}

	reqs := make([]types.ImportRequest, 0, len(req.Requests))
	for _, dto := range req.Requests {
		reqs = append(reqs, types.ImportRequest{
			To: types.ResourceAddress(dto.To),
			ID: types.ExternalID(dto.ID),
		})
	}

	results := s.planner.PlanAll(ctx, reqs)

	resp := PlanResponse{Results: make([]PlanResultDTO, 0, len(results))}
	for _, res := range results {
		dto := PlanResultDTO{
			Address: res.Request.To.String(),
			ID:      res.Request.ID.String(),
		}
		if res.Err != nil {
			resp.Failed++
			dto.Error = &ErrorDTO{
				Code:    string(errors.TypeOf(res.Err)),
				Message: res.Err.Error(),
			}
		} else {
			resp.Succeeded++
			dto.Binding = res.Binding
			dto.HCL = string(res.Artifact())
			dto.Notes = res.Block.Notes
		}
		resp.Results = append(resp.Results, dto)
	}

	s.writeJSON(w, resp, http.StatusOK)
}

// handleListBindings handles GET /bindings
func (s *Server) handleListBindings(w http.ResponseWriter, r *http.Request) {
	bindings, err := s.ledger.List(r.Context())
	if err != nil {
		s.writeError(w, string(errors.TypeOf(err)), err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, BindingsResponse{Bindings: bindings}, http.StatusOK)
}

// handleBindingHistory handles GET /bindings/history?address=
func (s *Server) handleBindingHistory(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		s.writeError(w, "MISSING_ADDRESS", "address query parameter required", http.StatusBadRequest)
		return
	}

	history, err := s.ledger.History(r.Context(), types.ResourceAddress(address))
	if err != nil {
		s.writeError(w, string(errors.TypeOf(err)), err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, BindingsResponse{Bindings: history}, http.StatusOK)
}

// handleUnbind handles DELETE /bindings?address=
func (s *Server) handleUnbind(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		s.writeError(w, "MISSING_ADDRESS", "address query parameter required", http.StatusBadRequest)
		return
	}

	if err := s.ledger.Unbind(r.Context(), types.ResourceAddress(address)); err != nil {
		status := http.StatusInternalServerError
		if errors.IsType(err, errors.TypeNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, string(errors.TypeOf(err)), err.Error(), status)
		return
	}
	s.writeJSON(w, map[string]string{"status": "unbound", "address": address}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"version": s.version}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": ErrorDTO{Code: code, Message: message},
	}, status)
}
