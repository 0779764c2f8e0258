package domain

import (
	"strings"
	"time"
)

// Part is one element of a multi-part message body.
type Part struct {
	Type PartType `json:"type"`
	Text string   `json:"text,omitempty"`
	URL  string   `json:"url,omitempty"`
}

// Message represents a single message in a conversation.
// Either Content or Parts carries the body.
type Message struct {
	MessageID string    `json:"message_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content,omitempty"`
	Parts     []Part    `json:"parts,omitempty"`
	ToolName  string    `json:"tool_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Text returns the textual body. Non-text parts are dropped.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var texts []string
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// PendingAction is scratch state handed from one turn to the next one only.
// Candidates come from a FindItineraries listing; Proposal is an update that
// was shown to the user as Summary and waits for confirmation.
type PendingAction struct {
	Candidates []ItineraryRef `json:"candidates,omitempty"`
	Proposal   *Itinerary     `json:"proposal,omitempty"`
	Summary    []string       `json:"summary,omitempty"`
}

// AwaitingConfirmation reports whether a proposal is waiting for a yes or no.
func (p *PendingAction) AwaitingConfirmation() bool {
	return p != nil && p.Proposal != nil && len(p.Summary) > 0
}

// ConversationState is the per-session state. It is treated as an immutable
// value: each turn receives one and returns a new one.
type ConversationState struct {
	SessionID         string         `json:"session_id"`
	UserID            string         `json:"user_id"`
	Messages          []Message      `json:"messages"`
	Intent            Intent         `json:"intent,omitempty"`
	LastIntent        Intent         `json:"last_intent,omitempty"`
	ActiveItineraryID string         `json:"active_itinerary_id,omitempty"`
	Pending           *PendingAction `json:"pending,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewConversationState starts an empty session for a user.
func NewConversationState(sessionID, userID string) ConversationState {
	return ConversationState{
		SessionID:  sessionID,
		UserID:     userID,
		Intent:     IntentGeneral,
		LastIntent: IntentGeneral,
	}
}

// Clone copies the state so the copy can be extended without aliasing the
// original message slice.
func (s ConversationState) Clone() ConversationState {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	if s.Pending != nil {
		p := PendingAction{
			Candidates: append([]ItineraryRef(nil), s.Pending.Candidates...),
			Proposal:   s.Pending.Proposal.Clone(),
			Summary:    append([]string(nil), s.Pending.Summary...),
		}
		out.Pending = &p
	}
	return out
}

// SearchResult is one hit returned by the search provider.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}
