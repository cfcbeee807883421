package participant

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows admin participant listings.
type ListFilter struct {
	EventID int // 0 means all events
}

// Store persists participants and their embedded registration lists.
// Implementations must honor a transaction carried in the context; the
// reconciler runs every mutation inside one.
type Store interface {
	// FindByPhone returns the participant for a phone number, or
	// sentinel.ErrNotFound.
	FindByPhone(ctx context.Context, phone string) (*Participant, error)
	// FindByID returns the participant by ID, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	// HasOrderRegistration reports whether the participant with this phone
	// already holds a non-failed registration for the given order and any of
	// the given events. This is the webhook idempotency guard.
	HasOrderRegistration(ctx context.Context, phone, orderID string, eventIDs []int) (bool, error)
	// Save upserts the participant row itself (not its registrations).
	Save(ctx context.Context, p *Participant) error
	// AppendRegistrations appends registrations to the participant's list,
	// preserving insertion order.
	AppendRegistrations(ctx context.Context, participantID uuid.UUID, regs []Registration) error
	// List returns participants matching the filter, ordered by creation time.
	List(ctx context.Context, filter ListFilter) ([]*Participant, error)
}
