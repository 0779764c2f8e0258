package domain

import "encoding/json"

// ToolName identifies a capability the orchestrator may invoke.
type ToolName string

const (
	ToolSearch          ToolName = "search"
	ToolAddItinerary    ToolName = "add_itinerary"
	ToolFindItineraries ToolName = "find_itineraries"
	ToolUpdateItinerary ToolName = "update_itinerary"
	ToolDeleteItinerary ToolName = "delete_itinerary"
)

// Tool describes a capability with its declared input schema.
type Tool struct {
	Name        ToolName        `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	TimeoutMs   int             `json:"timeout_ms"`
}

// PolicyDecision is the outcome of the capability policy.
type PolicyDecision string

const (
	PolicyAllow               PolicyDecision = "allow"
	PolicyRequireConfirmation PolicyDecision = "require_confirmation"
	PolicyBlock               PolicyDecision = "block"
)
