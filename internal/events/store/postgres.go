// Package store provides the PostgreSQL event catalog store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aakar/internal/events"
	"aakar/pkg/platform/sentinel"
)

// PostgresStore implements events.Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, fee, venue, starts_at, active, created_at
		FROM events
		WHERE active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Fee, &e.Venue, &e.StartsAt, &e.Active, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (events.Event, error) {
	var e events.Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, fee, venue, starts_at, active, created_at
		FROM events
		WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Category, &e.Fee, &e.Venue, &e.StartsAt, &e.Active, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Event{}, sentinel.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Save(ctx context.Context, e events.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, category, fee, venue, starts_at, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category, fee = EXCLUDED.fee,
		    venue = EXCLUDED.venue, starts_at = EXCLUDED.starts_at, active = EXCLUDED.active`,
		e.ID, e.Name, e.Category, e.Fee, e.Venue, e.StartsAt, e.Active, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE events SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate event: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
