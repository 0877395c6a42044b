package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

// MemoryReadings keeps readings in process. Used when no DB_DSN is set.
type MemoryReadings struct {
	mu    sync.RWMutex
	rows  []domain.Reading
	index map[string]struct{}
}

func NewMemoryReadings() *MemoryReadings {
	return &MemoryReadings{index: make(map[string]struct{})}
}

func (s *MemoryReadings) Insert(_ context.Context, r domain.Reading) (string, error) {
	r.ID = ensureID(r.ID)
	if r.HeaterActive != nil {
		v := *r.HeaterActive
		r.HeaterActive = &v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[r.ID]; ok {
		return r.ID, nil
	}
	s.index[r.ID] = struct{}{}
	s.rows = append(s.rows, r)
	return r.ID, nil
}

func (s *MemoryReadings) Find(_ context.Context, f ReadingFilter) ([]domain.Reading, error) {
	s.mu.RLock()
	out := make([]domain.Reading, 0, len(s.rows))
	// Walk backwards so equal timestamps keep newest-inserted first.
	for i := len(s.rows) - 1; i >= 0; i-- {
		r := s.rows[i]
		if f.Kind != nil && r.Kind != *f.Kind {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return page(out, f.Skip, f.Limit), nil
}

// MemoryAlerts keeps alerts in process. Used when no DB_DSN is set.
type MemoryAlerts struct {
	mu   sync.RWMutex
	rows []*domain.Alert
	byID map[string]*domain.Alert
}

func NewMemoryAlerts() *MemoryAlerts {
	return &MemoryAlerts{byID: make(map[string]*domain.Alert)}
}

func (s *MemoryAlerts) Insert(_ context.Context, a domain.Alert) (string, error) {
	a.ID = ensureID(a.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; ok {
		return a.ID, nil
	}
	s.byID[a.ID] = &a
	s.rows = append(s.rows, &a)
	return a.ID, nil
}

func (s *MemoryAlerts) Find(_ context.Context, f AlertFilter) ([]domain.Alert, error) {
	s.mu.RLock()
	out := make([]domain.Alert, 0, len(s.rows))
	for i := len(s.rows) - 1; i >= 0; i-- {
		a := *s.rows[i]
		if f.Resolved != nil && a.Resolved != *f.Resolved {
			continue
		}
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].RaisedAt.After(out[j].RaisedAt) })
	return page(out, f.Skip, f.Limit), nil
}

func (s *MemoryAlerts) Resolve(_ context.Context, id string) (domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return domain.Alert{}, fmt.Errorf("alert %q: %w", id, domain.ErrNotFound)
	}
	a.Resolved = true
	return *a, nil
}

func page[T any](rows []T, skip, limit int) []T {
	if skip > 0 {
		if skip >= len(rows) {
			return rows[:0]
		}
		rows = rows[skip:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
