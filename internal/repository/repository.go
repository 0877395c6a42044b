package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

// ReadingFilter selects readings newest first. A nil Kind means all kinds,
// a non-positive Limit means no limit.
type ReadingFilter struct {
	Kind  *domain.Kind
	Limit int
	Skip  int
}

// AlertFilter selects alerts newest first. A nil Resolved means both states.
type AlertFilter struct {
	Resolved *bool
	Limit    int
	Skip     int
}

// ReadingStore is the append-only time series of readings.
type ReadingStore interface {
	Insert(ctx context.Context, r domain.Reading) (string, error)
	Find(ctx context.Context, f ReadingFilter) ([]domain.Reading, error)
}

// AlertStore persists alerts. Resolve is the only mutation and is idempotent.
type AlertStore interface {
	Insert(ctx context.Context, a domain.Alert) (string, error)
	Find(ctx context.Context, f AlertFilter) ([]domain.Alert, error)
	Resolve(ctx context.Context, id string) (domain.Alert, error)
}

type Repos struct {
	Readings ReadingStore
	Alerts   AlertStore
}

func New(db *sqlx.DB) *Repos {
	return &Repos{
		Readings: NewPostgresReadings(db),
		Alerts:   NewPostgresAlerts(db),
	}
}

func NewMemory() *Repos {
	return &Repos{
		Readings: NewMemoryReadings(),
		Alerts:   NewMemoryAlerts(),
	}
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
