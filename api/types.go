package api

import (
	"import-planner/core/types"
)

// PlanRequest is the POST /plan request body
type PlanRequest struct {
	// Requests are the import declarations to plan
	Requests []ImportRequestDTO `json:"requests"`

	// RevealSensitive renders sensitive values literally
	RevealSensitive bool `json:"reveal_sensitive,omitempty"`
}

// ImportRequestDTO is one import declaration on the wire
type ImportRequestDTO struct {
	To string `json:"to"`
	ID string `json:"id"`
}

// PlanResponse is the POST /plan response body
type PlanResponse struct {
	// Results are per-request outcomes, in request order
	Results []PlanResultDTO `json:"results"`

	// Succeeded and Failed summarize the batch
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// PlanResultDTO is one per-request outcome
type PlanResultDTO struct {
	Address string         `json:"address"`
	ID      string         `json:"id"`
	Binding *types.Binding `json:"binding,omitempty"`
	HCL     string         `json:"hcl,omitempty"`
	Notes   []string       `json:"notes,omitempty"`
	Error   *ErrorDTO      `json:"error,omitempty"`
}

// ErrorDTO carries a taxonomy code and message
type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BindingsResponse lists bindings
type BindingsResponse struct {
	Bindings []*types.Binding `json:"bindings"`
}
