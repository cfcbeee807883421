// Package events holds the fest's event catalog: the things participants
// register for.
package events

import (
	"context"
	"time"

	dErrors "aakar/pkg/domain-errors"
)

// Event is one fest event.
type Event struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Fee       int64     `json:"fee"`
	Venue     string    `json:"venue"`
	StartsAt  time.Time `json:"starts_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate rejects events that cannot be listed.
func (e Event) Validate() error {
	if e.ID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "event id must be positive")
	}
	if e.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "event name is required")
	}
	if e.Fee < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "event fee must not be negative")
	}
	return nil
}

// Store persists the event catalog.
type Store interface {
	// ListActive returns active events ordered by id.
	ListActive(ctx context.Context) ([]Event, error)
	// FindByID returns an event, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id int) (Event, error)
	// Save upserts an event.
	Save(ctx context.Context, e Event) error
	// Deactivate soft-deletes an event so history stays intact.
	Deactivate(ctx context.Context, id int) error
}
