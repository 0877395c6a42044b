package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

const (
	readingColumns = `id, type, value, unit, heater_state, recorded_at`
	alertColumns   = `id, temperature, humidity, message, resolved, raised_at`
)

type PostgresReadings struct {
	db *sqlx.DB
}

func NewPostgresReadings(db *sqlx.DB) *PostgresReadings { return &PostgresReadings{db: db} }

// Insert is a no-op when a reading with the same id already exists, so a
// replayed insert does not duplicate the row.
func (s *PostgresReadings) Insert(ctx context.Context, r domain.Reading) (string, error) {
	r.ID = ensureID(r.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings(`+readingColumns+`) VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
		r.ID, string(r.Kind), r.Value, r.Unit, r.HeaterActive, r.RecordedAt)
	if err != nil {
		return "", fmt.Errorf("insert reading: %w", err)
	}
	return r.ID, nil
}

func (s *PostgresReadings) Find(ctx context.Context, f ReadingFilter) ([]domain.Reading, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(`SELECT ` + readingColumns + ` FROM readings`)
	if f.Kind != nil {
		args = append(args, string(*f.Kind))
		fmt.Fprintf(&q, ` WHERE type = $%d`, len(args))
	}
	q.WriteString(` ORDER BY recorded_at DESC, id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&q, ` LIMIT $%d`, len(args))
	}
	if f.Skip > 0 {
		args = append(args, f.Skip)
		fmt.Fprintf(&q, ` OFFSET $%d`, len(args))
	}

	out := []domain.Reading{}
	if err := s.db.SelectContext(ctx, &out, q.String(), args...); err != nil {
		return nil, fmt.Errorf("find readings: %w", err)
	}
	return out, nil
}

type PostgresAlerts struct {
	db *sqlx.DB
}

func NewPostgresAlerts(db *sqlx.DB) *PostgresAlerts { return &PostgresAlerts{db: db} }

func (s *PostgresAlerts) Insert(ctx context.Context, a domain.Alert) (string, error) {
	a.ID = ensureID(a.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts(`+alertColumns+`) VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
		a.ID, a.Temperature, a.Humidity, a.Message, a.Resolved, a.RaisedAt)
	if err != nil {
		return "", fmt.Errorf("insert alert: %w", err)
	}
	return a.ID, nil
}

func (s *PostgresAlerts) Find(ctx context.Context, f AlertFilter) ([]domain.Alert, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(`SELECT ` + alertColumns + ` FROM alerts`)
	if f.Resolved != nil {
		args = append(args, *f.Resolved)
		fmt.Fprintf(&q, ` WHERE resolved = $%d`, len(args))
	}
	q.WriteString(` ORDER BY raised_at DESC, id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&q, ` LIMIT $%d`, len(args))
	}
	if f.Skip > 0 {
		args = append(args, f.Skip)
		fmt.Fprintf(&q, ` OFFSET $%d`, len(args))
	}

	out := []domain.Alert{}
	if err := s.db.SelectContext(ctx, &out, q.String(), args...); err != nil {
		return nil, fmt.Errorf("find alerts: %w", err)
	}
	return out, nil
}

// Resolve marks the alert resolved. Resolving twice returns the same record.
func (s *PostgresAlerts) Resolve(ctx context.Context, id string) (domain.Alert, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Alert{}, fmt.Errorf("alert %q: %w", id, domain.ErrNotFound)
	}

	var a domain.Alert
	err := s.db.GetContext(ctx, &a,
		`UPDATE alerts SET resolved = TRUE WHERE id = $1 RETURNING `+alertColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Alert{}, fmt.Errorf("alert %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Alert{}, fmt.Errorf("resolve alert: %w", err)
	}
	return a, nil
}
