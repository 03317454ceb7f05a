package services

import (
	"context"
	"errors"
	"fmt"

	"eventregistry/internal/domain"
)

type catalogService struct {
	eventRepo domain.EventRepository
}

// NewCatalogService creates the read-only event catalog service.
func NewCatalogService(eventRepo domain.EventRepository) domain.CatalogService {
	return &catalogService{eventRepo: eventRepo}
}

func (s *catalogService) ListPublished(ctx context.Context, eventType domain.EventType) ([]*domain.Event, error) {
	if eventType != "" && !eventType.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	events, err := s.eventRepo.ListPublished(ctx, eventType)
	if err != nil {
		return nil, fmt.Errorf("list published events: %w", err)
	}
	return events, nil
}

func (s *catalogService) ListFeatured(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured events: %w", err)
	}
	return events, nil
}

func (s *catalogService) FindPublished(ctx context.Context, slug string) (*domain.Event, error) {
	event, err := s.eventRepo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}
