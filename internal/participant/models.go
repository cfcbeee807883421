// Package participant holds the fest's core record: a participant and the
// ordered list of event registrations they have paid for or attempted.
package participant

import (
	"time"

	"github.com/google/uuid"
)

// MaxEvents caps concurrent non-failed registrations per participant.
const MaxEvents = 4

// PaymentStatus is the outcome recorded against a registration.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

// Registration is one event registration attempt, embedded in its participant.
// Registrations are append-only: failed attempts stay as history and are never
// mutated or deleted.
type Registration struct {
	EventID       int           `json:"event_id"`
	Amount        int64         `json:"amount"`
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	PaymentID     string        `json:"payment_id,omitempty"`
	TicketURL     string        `json:"ticket_url,omitempty"`
	RegisteredAt  time.Time     `json:"registered_at"`
}

// Failed reports whether this registration is a failed payment attempt.
// Failed rows never count toward capacity or duplicate checks.
func (r Registration) Failed() bool {
	return r.PaymentStatus == PaymentStatusFailed
}

// Participant owns its registration list exclusively; insertion order is
// registration order.
type Participant struct {
	ID            uuid.UUID      `json:"id"`
	Phone         string         `json:"phone"`
	Name          string         `json:"name"`
	USN           string         `json:"usn"`
	College       string         `json:"college"`
	CreatedAt     time.Time      `json:"created_at"`
	Registrations []Registration `json:"registrations"`
}

// New constructs an unsaved participant keyed by phone number.
func New(phone, name, usn, college string, now time.Time) *Participant {
	return &Participant{
		ID:        uuid.New(),
		Phone:     phone,
		Name:      name,
		USN:       usn,
		College:   college,
		CreatedAt: now,
	}
}

// PaidCount returns the number of registrations with a paid status.
func (p *Participant) PaidCount() int {
	n := 0
	for _, r := range p.Registrations {
		if r.PaymentStatus == PaymentStatusPaid {
			n++
		}
	}
	return n
}

// ActiveCount returns the number of non-failed registrations. The store
// invariant is ActiveCount() <= MaxEvents at all times.
func (p *Participant) ActiveCount() int {
	n := 0
	for _, r := range p.Registrations {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// HasActiveRegistration reports whether a non-failed registration exists for
// the given event.
func (p *Participant) HasActiveRegistration(eventID int) bool {
	for _, r := range p.Registrations {
		if r.EventID == eventID && !r.Failed() {
			return true
		}
	}
	return false
}

// PaidRegistrations returns the paid registrations in insertion order.
func (p *Participant) PaidRegistrations() []Registration {
	var out []Registration
	for _, r := range p.Registrations {
		if r.PaymentStatus == PaymentStatusPaid {
			out = append(out, r)
		}
	}
	return out
}
