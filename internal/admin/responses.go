// Package admin holds the HTTP DTOs for the fest organiser API.
package admin

import (
	"time"

	"aakar/internal/participant"
)

// LoginRequest carries organiser credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// RegistrationResponse is one registration row inside a participant.
type RegistrationResponse struct {
	EventID       int       `json:"event_id"`
	Amount        int64     `json:"amount"`
	OrderID       string    `json:"order_id"`
	PaymentStatus string    `json:"payment_status"`
	TicketURL     string    `json:"ticket_url,omitempty"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// ParticipantResponse is the HTTP response DTO for a participant.
type ParticipantResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Phone         string                 `json:"phone"`
	USN           string                 `json:"usn"`
	College       string                 `json:"college"`
	CreatedAt     time.Time              `json:"created_at"`
	Registrations []RegistrationResponse `json:"registrations"`
}

// ParticipantsListResponse wraps the participant listing.
type ParticipantsListResponse struct {
	Participants []*ParticipantResponse `json:"participants"`
	Total        int                    `json:"total"`
}

// FromParticipant maps a domain participant to its response DTO.
func FromParticipant(p *participant.Participant) *ParticipantResponse {
	regs := make([]RegistrationResponse, 0, len(p.Registrations))
	for _, r := range p.Registrations {
		regs = append(regs, RegistrationResponse{
			EventID:       r.EventID,
			Amount:        r.Amount,
			OrderID:       r.OrderID,
			PaymentStatus: string(r.PaymentStatus),
			TicketURL:     r.TicketURL,
			RegisteredAt:  r.RegisteredAt,
		})
	}
	return &ParticipantResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Phone:         p.Phone,
		USN:           p.USN,
		College:       p.College,
		CreatedAt:     p.CreatedAt,
		Registrations: regs,
	}
}
