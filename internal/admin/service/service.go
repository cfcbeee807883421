// Package service implements the organiser-facing operations: session login,
// participant listings and export, and event catalog management.
package service

import (
	"context"
	"crypto/subtle"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"aakar/internal/events"
	"aakar/internal/participant"
	dErrors "aakar/pkg/domain-errors"
	"aakar/pkg/platform/sentinel"
	"aakar/pkg/secrets"
)

// TokenIssuer signs session tokens for authenticated organisers.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// CatalogCache is invalidated after every catalog mutation.
type CatalogCache interface {
	Invalidate(ctx context.Context) error
}

// Credentials are the configured organiser login. PasswordHash is a bcrypt
// hash; the plaintext never lives in configuration.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Service orchestrates the admin API.
type Service struct {
	participants participant.Store
	events       events.Store
	cache        CatalogCache
	tokens       TokenIssuer
	creds        Credentials
	logger       *slog.Logger
}

// New constructs a Service.
func New(participants participant.Store, catalog events.Store, cache CatalogCache, tokens TokenIssuer, creds Credentials, logger *slog.Logger) *Service {
	return &Service{
		participants: participants,
		events:       catalog,
		cache:        cache,
		tokens:       tokens,
		creds:        creds,
		logger:       logger,
	}
}

// Login checks the configured credentials and issues a session token. The
// password is verified against its bcrypt hash; the caller only ever learns
// that the pair was wrong, not which half.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1
	if err := secrets.Verify(password, s.creds.PasswordHash); err != nil || !userOK {
		s.logger.WarnContext(ctx, "admin login rejected", "username", username)
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return token, nil
}

// ListParticipants returns participants, optionally narrowed to one event.
func (s *Service) ListParticipants(ctx context.Context, filter participant.ListFilter) ([]*participant.Participant, error) {
	list, err := s.participants.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}
	return list, nil
}

// GetParticipant returns one participant by id.
func (s *Service) GetParticipant(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	p, err := s.participants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "participant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load participant")
	}
	return p, nil
}

// csvHeader is the export column layout. One row per registration; a
// participant without registrations still gets a row with blank columns.
var csvHeader = []string{
	"participant_id", "name", "phone", "usn", "college",
	"event_id", "order_id", "payment_status", "amount", "ticket_url", "registered_at",
}

// ExportParticipantsCSV streams the participant roster as CSV.
func (s *Service) ExportParticipantsCSV(ctx context.Context, w io.Writer, filter participant.ListFilter) error {
	list, err := s.participants.List(ctx, filter)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export")
	}
	for _, p := range list {
		if len(p.Registrations) == 0 {
			if err := cw.Write([]string{p.ID.String(), p.Name, p.Phone, p.USN, p.College, "", "", "", "", "", ""}); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export")
			}
			continue
		}
		for _, r := range p.Registrations {
			row := []string{
				p.ID.String(), p.Name, p.Phone, p.USN, p.College,
				fmt.Sprintf("%d", r.EventID), r.OrderID, string(r.PaymentStatus),
				fmt.Sprintf("%d", r.Amount), r.TicketURL, r.RegisteredAt.Format("2006-01-02T15:04:05Z07:00"),
			}
			if err := cw.Write(row); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export")
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to flush export")
	}
	return nil
}

// SaveEvent upserts a catalog entry and drops the cached listing.
func (s *Service) SaveEvent(ctx context.Context, e events.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.events.Save(ctx, e); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save event")
	}
	s.invalidateCatalog(ctx)
	s.logger.InfoContext(ctx, "event saved", "event_id", e.ID, "name", e.Name)
	return nil
}

// DeactivateEvent soft-deletes a catalog entry and drops the cached listing.
func (s *Service) DeactivateEvent(ctx context.Context, id int) error {
	if err := s.events.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate event")
	}
	s.invalidateCatalog(ctx)
	s.logger.InfoContext(ctx, "event deactivated", "event_id", id)
	return nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		// The cache entry expires on its own TTL; a failed invalidation only
		// delays visibility of the change.
		s.logger.WarnContext(ctx, "event cache invalidation failed", "error", err.Error())
	}
}
