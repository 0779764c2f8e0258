package service

import (
	"context"
	"fmt"

	"github.com/phuy1125/vin2/internal/domain"
)

// HandleTurn loads the session, processes one turn and saves the result.
// Turns of the same session run one at a time.
func (s *Service) HandleTurn(ctx context.Context, sessionID string, req domain.TurnRequest) (*domain.TurnResponse, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", "session id is required")
	}
	if req.UserID == "" {
		return nil, domain.NewValidationError("user_id", "user id is required")
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.loadSession(ctx, sessionID, req.UserID)
	if err != nil {
		return nil, err
	}

	next, reply, err := s.ProcessTurn(ctx, *state, domain.Message{Content: req.Content, Parts: req.Parts})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(context.WithoutCancel(ctx), next); err != nil {
		return nil, domain.NewUpstreamError("session store", err)
	}
	return domain.NewTurnResponse(next, reply), nil
}

// GetSession returns the stored state of a session owned by userID.
func (s *Service) GetSession(ctx context.Context, sessionID, userID string) (*domain.ConversationState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.NewUpstreamError("session store", err)
	}
	if state == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if userID != "" && state.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrForbidden)
	}
	return state, nil
}

// DeleteSession forgets a session. Deleting an unknown session succeeds.
func (s *Service) DeleteSession(ctx context.Context, sessionID, userID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.NewUpstreamError("session store", err)
	}
	if state == nil {
		return nil
	}
	if userID != "" && state.UserID != userID {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrForbidden)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return domain.NewUpstreamError("session store", err)
	}
	return nil
}

func (s *Service) loadSession(ctx context.Context, sessionID, userID string) (*domain.ConversationState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.NewUpstreamError("session store", err)
	}
	if state == nil {
		fresh := domain.NewConversationState(sessionID, userID)
		return &fresh, nil
	}
	if state.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrForbidden)
	}
	return state, nil
}
