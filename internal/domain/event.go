package domain

import (
	"context"
	"time"
)

// EventType classifies an event. Olympiads carry a post-payment test;
// contests and conferences get an instructional email instead.
type EventType string

const (
	EventTypeOlympiad   EventType = "olymp"
	EventTypeContest    EventType = "contest"
	EventTypeConference EventType = "conference"
)

// IsValid reports whether t is one of the known event types.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeOlympiad, EventTypeContest, EventTypeConference:
		return true
	}
	return false
}

// Event represents a published activity open for registration.
// swagger:model Event
type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	Description      string     `json:"description"`
	Type             EventType  `json:"type"`
	EventDate        *time.Time `json:"event_date"`
	// FeeMinor is the participation fee in minor currency units (kopecks).
	FeeMinor    int64     `json:"fee_minor"`
	IsPublished bool      `json:"is_published"`
	IsFeatured  bool      `json:"is_featured"`
	SortOrder   int       `json:"sort_order"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventRepository defines read access to the event catalog.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetPublishedBySlug returns the published event with the given slug,
	// or ErrNotFound. Unpublished events are never returned.
	GetPublishedBySlug(ctx context.Context, slug string) (*Event, error)
	// ListPublished lists published events, optionally filtered by type
	// (empty eventType means all types), ordered by (sort_order, id).
	ListPublished(ctx context.Context, eventType EventType) ([]*Event, error)
	ListFeatured(ctx context.Context) ([]*Event, error)
}

// CatalogService exposes the read-only event catalog.
type CatalogService interface {
	ListPublished(ctx context.Context, eventType EventType) ([]*Event, error)
	ListFeatured(ctx context.Context) ([]*Event, error)
	FindPublished(ctx context.Context, slug string) (*Event, error)
}
