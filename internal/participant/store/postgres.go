// Package store provides the PostgreSQL participant store. Registrations live
// in a child table ordered by a position column so the embedded list scans
// back in insertion order.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"aakar/internal/participant"
	"aakar/pkg/platform/sentinel"
	txcontext "aakar/pkg/platform/tx"
)

// PostgresStore implements participant.Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier returns the transaction from context when present so every store
// call inside RunInTx joins the same transaction.
func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*participant.Participant, error) {
	return s.findOne(ctx, `SELECT id, phone, name, usn, college, created_at FROM participants WHERE phone = $1`, phone)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	return s.findOne(ctx, `SELECT id, phone, name, usn, college, created_at FROM participants WHERE id = $1`, id)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*participant.Participant, error) {
	var p participant.Participant
	err := s.querier(ctx).QueryRowContext(ctx, query, arg).
		Scan(&p.ID, &p.Phone, &p.Name, &p.USN, &p.College, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	if err := s.loadRegistrations(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) loadRegistrations(ctx context.Context, p *participant.Participant) error {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT event_id, amount, order_id, COALESCE(payment_status, ''), COALESCE(payment_id, ''), COALESCE(ticket_url, ''), registered_at
		FROM registrations
		WHERE participant_id = $1
		ORDER BY position`, p.ID)
	if err != nil {
		return fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r participant.Registration
		var status string
		if err := rows.Scan(&r.EventID, &r.Amount, &r.OrderID, &status, &r.PaymentID, &r.TicketURL, &r.RegisteredAt); err != nil {
			return fmt.Errorf("scan registration: %w", err)
		}
		r.PaymentStatus = participant.PaymentStatus(status)
		p.Registrations = append(p.Registrations, r)
	}
	return rows.Err()
}

func (s *PostgresStore) HasOrderRegistration(ctx context.Context, phone, orderID string, eventIDs []int) (bool, error) {
	var exists bool
	err := s.querier(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM registrations r
			JOIN participants p ON p.id = r.participant_id
			WHERE p.phone = $1
			  AND r.order_id = $2
			  AND r.event_id = ANY($3)
			  AND COALESCE(r.payment_status, '') <> 'failed'
		)`, phone, orderID, pq.Array(eventIDs)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order registration: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *participant.Participant) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO participants (id, phone, name, usn, college, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone) DO UPDATE
		SET name = EXCLUDED.name, usn = EXCLUDED.usn, college = EXCLUDED.college`,
		p.ID, p.Phone, p.Name, p.USN, p.College, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendRegistrations(ctx context.Context, participantID uuid.UUID, regs []participant.Registration) error {
	q := s.querier(ctx)
	var position int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM registrations WHERE participant_id = $1`,
		participantID).Scan(&position)
	if err != nil {
		return fmt.Errorf("next registration position: %w", err)
	}
	for i, r := range regs {
		var status any
		if r.PaymentStatus != "" {
			status = string(r.PaymentStatus)
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO registrations (participant_id, position, event_id, amount, order_id, payment_status, payment_id, ticket_url, registered_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			participantID, position+i, r.EventID, r.Amount, r.OrderID, status, nullIfEmpty(r.PaymentID), nullIfEmpty(r.TicketURL), r.RegisteredAt)
		if err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter participant.ListFilter) ([]*participant.Participant, error) {
	query := `SELECT id, phone, name, usn, college, created_at FROM participants ORDER BY created_at`
	args := []any{}
	if filter.EventID != 0 {
		query = `
			SELECT DISTINCT p.id, p.phone, p.name, p.usn, p.college, p.created_at
			FROM participants p
			JOIN registrations r ON r.participant_id = p.id
			WHERE r.event_id = $1 AND COALESCE(r.payment_status, '') <> 'failed'
			ORDER BY p.created_at`
		args = append(args, filter.EventID)
	}

	rows, err := s.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*participant.Participant
	for rows.Next() {
		var p participant.Participant
		if err := rows.Scan(&p.ID, &p.Phone, &p.Name, &p.USN, &p.College, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := s.loadRegistrations(ctx, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
