// internal/api/types.go
//
// Wire contracts for the generation backend. Field names follow the
// backend's JSON schema, so these structs are the single place where
// snake_case crosses into the rest of the codebase.

package api

import "github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"

type analyzeRequest struct {
	Prompt string `json:"prompt"`
}

// AnalyzeResult is the outcome of the first free-text analysis call.
// Questions may be empty, in which case intake completes immediately.
type AnalyzeResult struct {
	SessionID string            `json:"session_id"`
	RFPType   string            `json:"rfp_type"`
	Entities  map[string]string `json:"entities"`
	Questions []string          `json:"questions"`
}

type discoverRequest struct {
	SessionID string            `json:"session_id"`
	Context   map[string]string `json:"context"`
}

// DiscoveryResult carries the fields of the context-discovery response
// the application consumes. The backend returns more (relevant
// document summaries, extracted insights); those stay opaque here.
type DiscoveryResult struct {
	TotalFound  int    `json:"total_found"`
	SearchQuery string `json:"search_query"`
}

type generateRequest struct {
	SessionID string            `json:"session_id"`
	Context   map[string]string `json:"context"`
}

type generateResponse struct {
	SessionID string     `json:"session_id"`
	Sections  rfp.Bundle `json:"sections"`
}

// RegenerateRequest asks for a fresh version of a single section.
// Iteration is the version the new content will become.
type RegenerateRequest struct {
	SessionID         string            `json:"session_id"`
	SectionName       string            `json:"section_name"`
	Context           map[string]string `json:"context"`
	Iteration         int               `json:"iteration"`
	AdditionalContext string            `json:"additional_context,omitempty"`
}

type regenerateResponse struct {
	Section rfp.Section `json:"section"`
}

type healthResponse struct {
	Status string `json:"status"`
}
