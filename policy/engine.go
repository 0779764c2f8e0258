package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/phuy1125/vin2/internal/domain"
)

// Input is the document the capability policy is evaluated against.
type Input struct {
	Capability domain.ToolName `json:"capability"`
	UserID     string          `json:"user_id"`
	OwnerID    string          `json:"owner_id,omitempty"`
	Confirmed  bool            `json:"confirmed"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.capability_policy.decision"),
		rego.Module("capability_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewDefaultEngine prepares DefaultPolicy.
func NewDefaultEngine(ctx context.Context) (*Engine, error) {
	return NewEngine(ctx, DefaultPolicy)
}

// Evaluate returns allow, require_confirmation or block for the input.
// An unrecognised result is treated as block.
func (e *Engine) Evaluate(ctx context.Context, input Input) (domain.PolicyDecision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.PolicyAllow, nil
	}

	s, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return domain.PolicyBlock, nil
	}
	switch d := domain.PolicyDecision(s); d {
	case domain.PolicyAllow, domain.PolicyRequireConfirmation, domain.PolicyBlock:
		return d, nil
	}
	return domain.PolicyBlock, nil
}

// DefaultPolicy gates mutating capabilities: every call needs a user, a
// caller may only touch their own itineraries, and updates need an explicit
// confirmation.
const DefaultPolicy = `
package capability_policy

import rego.v1

default decision := "allow"

decision := "block" if blocked

decision := "require_confirmation" if {
	not blocked
	input.capability in {"update_itinerary", "delete_itinerary"}
	not input.confirmed
}

blocked if {
	input.capability != "search"
	input.user_id == ""
}

blocked if {
	input.owner_id != ""
	input.owner_id != input.user_id
}
`
