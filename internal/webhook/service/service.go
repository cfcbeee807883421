// Package service implements the registration reconciler: the transactional
// state machine that turns verified gateway webhooks into participant
// registration state exactly once.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"aakar/internal/audit"
	"aakar/internal/participant"
	"aakar/internal/webhook"
	"aakar/internal/webhook/metrics"
	dErrors "aakar/pkg/domain-errors"
	"aakar/pkg/platform/sentinel"
)

// failedTicketMarker is stored as the ticket URL of failed payment attempts.
const failedTicketMarker = "failed"

// TicketRequest is the input to ticket generation for a successful payment.
type TicketRequest struct {
	ParticipantID uuid.UUID
	Name          string
	Phone         string
	Price         int64
	EventCount    int
	OrderID       string
}

// TicketGenerator produces a ticket image for a paid registration and returns
// its public URL.
type TicketGenerator interface {
	Generate(ctx context.Context, req TicketRequest) (string, error)
}

// Auditor records reconciliation outcomes. Implementations write to the
// transactional outbox, so records share the reconciler's transaction.
type Auditor interface {
	Append(ctx context.Context, event audit.Event) error
}

// Tx is the transaction boundary the reconciler runs inside. The key is the
// participant's phone number; the in-memory implementation shards locks by
// it, the PostgreSQL implementation relies on serializable isolation instead.
type Tx interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Result is the outcome of one webhook reconciliation.
type Result struct {
	Added     int
	Duplicate bool
}

// Service is the registration reconciler.
type Service struct {
	store   participant.Store
	tx      Tx
	tickets TicketGenerator
	auditor Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store participant.Store, tx Tx, tickets TicketGenerator, auditor Auditor, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		tx:      tx,
		tickets: tickets,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Process applies one verified webhook atomically. Redelivered webhooks for
// an already-reconciled order are a success no-op; a full participant gets a
// capacity error; anything unexpected aborts the transaction and surfaces as
// an internal error for the gateway to redeliver.
func (s *Service) Process(ctx context.Context, entity webhook.PaymentEntity) (Result, error) {
	if err := entity.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	capacityExceeded := false

	err := s.tx.RunInTx(ctx, entity.Notes.Phone, func(ctx context.Context) error {
		res = Result{}
		capacityExceeded = false

		// Idempotency guard: the gateway redelivers webhooks until it sees a
		// 2xx, so the same order may arrive many times.
		seen, err := s.store.HasOrderRegistration(ctx, entity.Notes.Phone, entity.OrderID, entity.EventIDs())
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "duplicate order check failed")
		}
		if seen {
			res.Duplicate = true
			return s.record(ctx, audit.ActionOrderDuplicate, entity, 0)
		}

		p, isNew, err := s.loadOrCreate(ctx, entity)
		if err != nil {
			return err
		}

		remaining := participant.MaxEvents - p.PaidCount()
		if remaining <= 0 {
			capacityExceeded = true
			return s.record(ctx, audit.ActionCapacityRejected, entity, 0)
		}

		added, err := s.buildRegistrations(ctx, p, entity, remaining)
		if err != nil {
			return err
		}
		if len(added) == 0 {
			return nil
		}

		if isNew {
			if err := s.store.Save(ctx, p); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save participant")
			}
		}
		if err := s.store.AppendRegistrations(ctx, p.ID, added); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append registrations")
		}

		action := audit.ActionPaymentCaptured
		if entity.Status != webhook.StatusCaptured {
			action = audit.ActionPaymentFailed
		}
		if err := s.record(ctx, action, entity, len(added)); err != nil {
			return err
		}

		res.Added = len(added)
		return nil
	})
	if err != nil {
		s.metrics.IncProcessed("error")
		return Result{}, err
	}
	if capacityExceeded {
		s.metrics.IncProcessed("capacity_rejected")
		return Result{}, dErrors.New(dErrors.CodeCapacityExceeded, "Maximum event registration limit reached")
	}

	switch {
	case res.Duplicate:
		s.metrics.IncProcessed("duplicate")
	case entity.Status == webhook.StatusCaptured:
		s.metrics.IncProcessed("captured")
	default:
		s.metrics.IncProcessed("failed")
	}
	s.metrics.AddRegistrations(res.Added)
	return res, nil
}

func (s *Service) loadOrCreate(ctx context.Context, entity webhook.PaymentEntity) (*participant.Participant, bool, error) {
	p, err := s.store.FindByPhone(ctx, entity.Notes.Phone)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load participant")
	}
	notes := entity.Notes
	return participant.New(notes.Phone, notes.Name, notes.USN, notes.College, s.now()), true, nil
}

// buildRegistrations walks the payload's event list in order, skipping events
// the participant already holds and stopping when the slot budget runs out.
// The ticket is generated once per invocation, after the walk, so its event
// count covers exactly the registrations that made it in.
func (s *Service) buildRegistrations(ctx context.Context, p *participant.Participant, entity webhook.PaymentEntity, remaining int) ([]participant.Registration, error) {
	captured := entity.Status == webhook.StatusCaptured
	now := s.now()

	var added []participant.Registration
	for _, er := range entity.Notes.Registrations {
		if remaining <= 0 {
			s.logger.WarnContext(ctx, "event dropped: registration limit budget exhausted",
				"phone", entity.Notes.Phone,
				"event_id", er.EventID,
				"order_id", entity.OrderID,
			)
			break
		}
		if p.HasActiveRegistration(er.EventID) || containsEvent(added, er.EventID) {
			s.logger.WarnContext(ctx, "event skipped: already registered",
				"phone", entity.Notes.Phone,
				"event_id", er.EventID,
				"order_id", entity.OrderID,
			)
			continue
		}

		reg := participant.Registration{
			EventID:      er.EventID,
			Amount:       er.Amount,
			OrderID:      entity.OrderID,
			PaymentID:    entity.ID,
			RegisteredAt: now,
		}
		if captured {
			reg.PaymentStatus = participant.PaymentStatusPaid
		} else {
			reg.PaymentStatus = participant.PaymentStatusFailed
			reg.TicketURL = failedTicketMarker
		}

		added = append(added, reg)
		remaining--
	}

	if !captured || len(added) == 0 {
		return added, nil
	}

	url, err := s.tickets.Generate(ctx, TicketRequest{
		ParticipantID: p.ID,
		Name:          p.Name,
		Phone:         p.Phone,
		Price:         entity.Amount,
		EventCount:    len(added),
		OrderID:       entity.OrderID,
	})
	if err != nil {
		// Aborts the whole invocation: no partial commit, the gateway
		// redelivers and the duplicate guard makes the retry safe.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ticket generation failed")
	}
	for i := range added {
		added[i].TicketURL = url
	}
	return added, nil
}

func (s *Service) record(ctx context.Context, action string, entity webhook.PaymentEntity, added int) error {
	if s.auditor == nil {
		return nil
	}
	err := s.auditor.Append(ctx, audit.Event{
		Action:    action,
		Phone:     entity.Notes.Phone,
		OrderID:   entity.OrderID,
		PaymentID: entity.ID,
		Amount:    entity.Amount,
		Added:     added,
		Timestamp: s.now(),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to record %s audit event", action))
	}
	return nil
}

func containsEvent(regs []participant.Registration, eventID int) bool {
	for _, r := range regs {
		if r.EventID == eventID {
			return true
		}
	}
	return false
}
