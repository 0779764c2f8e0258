package domain

import "encoding/json"

// TurnRequest is the body of a conversational turn.
type TurnRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Parts   []Part `json:"parts,omitempty"`
}

// TurnResponse is returned after a turn has been processed.
type TurnResponse struct {
	SessionID         string   `json:"session_id"`
	Intent            Intent   `json:"intent"`
	ActiveItineraryID string   `json:"active_itinerary_id,omitempty"`
	AwaitingConfirm   bool     `json:"awaiting_confirmation"`
	Changes           []string `json:"changes,omitempty"`
	Reply             Message  `json:"reply"`
}

// NewTurnResponse builds the response from the state produced by a turn.
func NewTurnResponse(state ConversationState, reply Message) *TurnResponse {
	resp := &TurnResponse{
		SessionID:         state.SessionID,
		Intent:            state.Intent,
		ActiveItineraryID: state.ActiveItineraryID,
		AwaitingConfirm:   state.Pending.AwaitingConfirmation(),
		Reply:             reply,
	}
	if resp.AwaitingConfirm {
		resp.Changes = state.Pending.Summary
	}
	return resp
}

// ToolInvokeRequest represents the request to invoke a capability directly.
type ToolInvokeRequest struct {
	Args json.RawMessage `json:"args"`
}

// ToolInvokeResponse represents the response from invoking a capability.
type ToolInvokeResponse struct {
	Status string          `json:"status"` // succeeded, failed
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ToolError      `json:"error,omitempty"`
}

// ToolError represents a tool error.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListToolsResponse represents the response for listing tools.
type ListToolsResponse struct {
	Tools []Tool `json:"tools"`
}

// ListItinerariesResponse lists the itineraries of a user.
type ListItinerariesResponse struct {
	Itineraries []ItinerarySummary `json:"itineraries"`
}

// ItineraryResponse is an itinerary with its derived total.
type ItineraryResponse struct {
	*Itinerary
	TotalCost float64 `json:"total_cost"`
}
