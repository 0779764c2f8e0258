package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/phuy1125/vin2/internal/domain"
)

// ExecutorFunc runs a capability from JSON arguments.
type ExecutorFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

type entry struct {
	tool domain.Tool
	exec ExecutorFunc
}

// Registry stores capability executors keyed by tool name.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ToolName]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[domain.ToolName]entry),
	}
}

// Register adds a new executor for a tool.
func (r *Registry) Register(tool domain.Tool, exec ExecutorFunc) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("executor already registered for %s", tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, exec: exec}
	return nil
}

// MustRegister adds an executor or panics.
func (r *Registry) MustRegister(tool domain.Tool, exec ExecutorFunc) {
	if err := r.Register(tool, exec); err != nil {
		panic(err)
	}
}

// Execute runs the executor for the tool name. Unknown tools wrap domain.ErrNotFound.
func (r *Registry) Execute(ctx context.Context, toolName domain.ToolName, args json.RawMessage) (json.RawMessage, error) {
	if toolName == "" {
		return nil, domain.NewValidationError("tool_name", "tool name is required")
	}
	r.mu.RLock()
	e, ok := r.entries[toolName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no executor registered for %s: %w", toolName, domain.ErrNotFound)
	}
	return e.exec(ctx, args)
}

// Lookup returns the declaration of a registered tool.
func (r *Registry) Lookup(toolName domain.ToolName) (domain.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[toolName]
	return e.tool, ok
}

// Tools returns the catalogue sorted by name.
func (r *Registry) Tools() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NewRegistryFor exposes the directly invocable capabilities of tb. The
// update capability is absent: it only runs inside a confirmed conversation.
func NewRegistryFor(tb *Toolbox) *Registry {
	r := NewRegistry()
	r.MustRegister(domain.Tool{
		Name:        domain.ToolSearch,
		Description: "Search the web for travel information",
		Schema:      json.RawMessage(searchSchema),
		TimeoutMs:   int(tb.timeouts.Search.Milliseconds()),
	}, invoke(tb.Search))
	r.MustRegister(domain.Tool{
		Name:        domain.ToolAddItinerary,
		Description: "Add an itinerary to the database",
		Schema:      json.RawMessage(addItinerarySchema),
		TimeoutMs:   int(tb.timeouts.Store.Milliseconds()),
	}, invoke(tb.CreateItinerary))
	r.MustRegister(domain.Tool{
		Name:        domain.ToolFindItineraries,
		Description: "Find itineraries for a user and return them as a selectable list",
		Schema:      json.RawMessage(findItinerariesSchema),
		TimeoutMs:   int(tb.timeouts.Store.Milliseconds()),
	}, invoke(tb.FindItineraries))
	return r
}

// invoke decodes args into In, runs fn and encodes its output. The output is
// returned alongside a capability error so callers can still show the message.
func invoke[In any, Out any](fn func(context.Context, In) (Out, error)) ExecutorFunc {
	return func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
		var in In
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, domain.NewValidationError("args", err.Error())
			}
		}
		out, err := fn(ctx, in)
		raw, mErr := json.Marshal(out)
		if mErr != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", mErr)
		}
		return raw, err
	}
}

const searchSchema = `{
  "type": "object",
  "properties": {"query": {"type": "string", "minLength": 1}},
  "required": ["query"]
}`

const activitySchema = `{
  "type": "object",
  "properties": {"description": {"type": "string"}, "cost": {"type": "number", "minimum": 0}},
  "required": ["description", "cost"]
}`

const blockSchema = `{"type": "object", "properties": {"activities": {"type": "array", "items": ` + activitySchema + `}}, "required": ["activities"]}`

const addItinerarySchema = `{
  "type": "object",
  "properties": {
    "user_id": {"type": "string"},
    "destination": {"type": "string"},
    "duration": {"type": "string"},
    "start_date": {"type": "string", "format": "date-time"},
    "days": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "day": {"type": "integer", "minimum": 1},
          "morning": ` + blockSchema + `,
          "afternoon": ` + blockSchema + `,
          "evening": ` + blockSchema + `
        },
        "required": ["day", "morning", "afternoon", "evening"]
      }
    }
  },
  "required": ["user_id", "destination", "duration", "days"]
}`

const findItinerariesSchema = `{
  "type": "object",
  "properties": {"user_id": {"type": "string"}},
  "required": ["user_id"]
}`
