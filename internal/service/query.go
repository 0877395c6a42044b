package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/cache"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
)

type ReadingService struct {
	repos  *repository.Repos
	latest cache.LatestCache
	log    zerolog.Logger
}

func (s *ReadingService) List(ctx context.Context, f repository.ReadingFilter) ([]domain.Reading, error) {
	return s.repos.Readings.Find(ctx, f)
}

// Latest is the most recent reading of each kind; nil when none exists yet.
type Latest struct {
	Temperature *domain.Reading `json:"temperature"`
	Humidity    *domain.Reading `json:"humidity"`
}

// Latest answers from the cache and falls back to the store per kind.
func (s *ReadingService) Latest(ctx context.Context) (Latest, error) {
	var out Latest
	for _, kind := range []domain.Kind{domain.KindTemperature, domain.KindHumidity} {
		r, err := s.latestOf(ctx, kind)
		if err != nil {
			return Latest{}, err
		}
		if kind == domain.KindTemperature {
			out.Temperature = r
		} else {
			out.Humidity = r
		}
	}
	return out, nil
}

func (s *ReadingService) latestOf(ctx context.Context, kind domain.Kind) (*domain.Reading, error) {
	r, err := s.latest.Get(ctx, kind)
	if err == nil {
		return &r, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("type", string(kind)).Msg("latest cache read failed")
	}

	rows, err := s.repos.Readings.Find(ctx, repository.ReadingFilter{Kind: &kind, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

type AlertService struct {
	repos *repository.Repos
}

// List returns alerts newest first. A non-nil severity narrows the fetched
// page to alerts of that classification.
func (s *AlertService) List(ctx context.Context, f repository.AlertFilter, severity *domain.Severity) ([]AlertView, error) {
	alerts, err := s.repos.Alerts.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]AlertView, 0, len(alerts))
	for _, a := range alerts {
		v := View(a)
		if severity != nil && v.Severity != *severity {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *AlertService) Resolve(ctx context.Context, id string) (AlertView, error) {
	a, err := s.repos.Alerts.Resolve(ctx, id)
	if err != nil {
		return AlertView{}, err
	}
	return View(a), nil
}
