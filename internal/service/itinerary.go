package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/phuy1125/vin2/internal/domain"
)

// ListItineraries returns the user's itineraries oldest first.
func (s *Service) ListItineraries(ctx context.Context, userID string) ([]domain.ItinerarySummary, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "user id is required")
	}
	list, err := s.itineraries.ListByOwner(ctx, userID)
	if err != nil {
		return nil, domain.NewUpstreamError("itinerary store", err)
	}
	return lo.Map(list, func(it *domain.Itinerary, _ int) domain.ItinerarySummary {
		return domain.Summarize(it)
	}), nil
}

// GetItinerary returns one itinerary. A non-empty userID must own it.
func (s *Service) GetItinerary(ctx context.Context, id, userID string) (*domain.Itinerary, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "itinerary id is required")
	}
	it, err := s.itineraries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewUpstreamError("itinerary store", err)
	}
	if userID != "" && it.OwnerUserID != userID {
		return nil, fmt.Errorf("itinerary %s: %w", id, domain.ErrForbidden)
	}
	return it, nil
}

// DeleteItinerary removes an itinerary owned by userID.
func (s *Service) DeleteItinerary(ctx context.Context, id, userID string) error {
	if id == "" {
		return domain.NewValidationError("id", "itinerary id is required")
	}
	if userID == "" {
		return domain.NewValidationError("user_id", "user id is required")
	}
	if err := s.tools.DeleteItinerary(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("itinerary deleted", "itinerary_id", id, "user_id", userID)
	return nil
}
