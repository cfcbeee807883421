// Package webhook defines the payment gateway's webhook payload and the
// signature check that gates it.
package webhook

import dErrors "aakar/pkg/domain-errors"

// StatusCaptured is the gateway's payment status for a successful charge.
const StatusCaptured = "captured"

// Event is the gateway webhook envelope.
type Event struct {
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentEntity is the payment object inside the webhook envelope.
type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Notes   Notes  `json:"notes"`
}

// Notes carries the registration submission echoed back by the gateway.
type Notes struct {
	Name          string              `json:"name"`
	Phone         string              `json:"phone"`
	USN           string              `json:"usn"`
	College       string              `json:"college"`
	Registrations []EventRegistration `json:"registrations"`
}

// EventRegistration is one requested event registration inside the notes.
type EventRegistration struct {
	EventID int    `json:"event_id"`
	Amount  int64  `json:"amount"`
	OrderID string `json:"order_id"`
}

// Validate rejects payloads the reconciler cannot act on.
func (e PaymentEntity) Validate() error {
	if e.OrderID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing order_id")
	}
	if e.Notes.Phone == "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing phone in notes")
	}
	if len(e.Notes.Registrations) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no registrations in notes")
	}
	return nil
}

// EventIDs returns the event ids named in the payload, in order.
func (e PaymentEntity) EventIDs() []int {
	ids := make([]int, 0, len(e.Notes.Registrations))
	for _, r := range e.Notes.Registrations {
		ids = append(ids, r.EventID)
	}
	return ids
}
