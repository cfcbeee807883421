// Package audit records payment reconciliation outcomes through a
// transactional outbox: events are written in the reconciler's transaction
// and published to Kafka by a background worker, so the audit trail never
// disagrees with committed registration state.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the reconciler.
const (
	ActionPaymentCaptured  = "payment.captured"
	ActionPaymentFailed    = "payment.failed"
	ActionOrderDuplicate   = "order.duplicate"
	ActionCapacityRejected = "registration.capacity_rejected"
)

// Event is one reconciliation outcome.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Phone     string    `json:"phone"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id,omitempty"`
	Amount    int64     `json:"amount"`
	Added     int       `json:"registrations_added"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry is an outbox row awaiting publication.
type Entry struct {
	ID        uuid.UUID
	Action    string
	Payload   []byte
	CreatedAt time.Time
}

// Store is the outbox. Append joins any transaction carried in the context;
// the worker uses the remaining methods outside transactions.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
