package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/alerting"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/cache"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
)

const notifyTimeout = 10 * time.Second

// IngestService persists decoded sensor messages, raises alerts and forwards
// both to live observers. It satisfies bridge.Sink.
type IngestService struct {
	repos    *repository.Repos
	latest   cache.LatestCache
	pub      Publisher
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time

	notifying sync.WaitGroup
}

func newIngestService(d Deps) *IngestService {
	return &IngestService{
		repos:    d.Repos,
		latest:   d.Latest,
		pub:      d.Publisher,
		notifier: d.Notifier,
		log:      d.Logger.With().Str("component", "ingest").Logger(),
		now:      time.Now,
	}
}

func (s *IngestService) Temperature(ctx context.Context, t domain.TemperatureTelemetry, raw json.RawMessage) error {
	heater := t.Heater
	return s.storeReading(ctx, domain.Reading{
		Kind:         domain.KindTemperature,
		Value:        t.Value,
		Unit:         t.Unit,
		HeaterActive: &heater,
		RecordedAt:   s.recordedAt(t.RecordedAt),
	}, domain.EventTemperature, raw)
}

func (s *IngestService) Humidity(ctx context.Context, h domain.HumidityTelemetry, raw json.RawMessage) error {
	return s.storeReading(ctx, domain.Reading{
		Kind:       domain.KindHumidity,
		Value:      h.Value,
		Unit:       h.Unit,
		RecordedAt: s.recordedAt(h.RecordedAt),
	}, domain.EventHumidity, raw)
}

// Status raises an alert when the device flags one. Nothing is stored for a
// status event without the flag.
func (s *IngestService) Status(ctx context.Context, ev domain.StatusEvent) error {
	a, ok := alerting.Evaluate(ev, s.now())
	if !ok {
		return nil
	}

	id, err := s.repos.Alerts.Insert(ctx, a)
	if err != nil {
		return err
	}
	a.ID = id

	view := View(a)
	s.log.Warn().
		Str("alert_id", id).
		Float64("temperature", a.Temperature).
		Float64("humidity", a.Humidity).
		Str("severity", string(view.Severity)).
		Msg("alert raised")
	s.pub.Publish(domain.EventAlert, view)
	s.notify(a)
	return nil
}

// Wait blocks until in-flight alert notifications have finished.
func (s *IngestService) Wait() { s.notifying.Wait() }

func (s *IngestService) storeReading(ctx context.Context, r domain.Reading, event string, raw json.RawMessage) error {
	id, err := s.repos.Readings.Insert(ctx, r)
	if err != nil {
		return err
	}
	r.ID = id

	if err := s.latest.Put(ctx, r); err != nil {
		s.log.Warn().Err(err).Str("type", string(r.Kind)).Msg("latest cache update failed")
	}
	s.pub.Publish(event, raw)
	return nil
}

func (s *IngestService) recordedAt(ts *time.Time) time.Time {
	if ts != nil && !ts.IsZero() {
		return ts.UTC()
	}
	return s.now().UTC()
}

func (s *IngestService) notify(a domain.Alert) {
	if s.notifier == nil {
		return
	}
	s.notifying.Add(1)
	go func() {
		defer s.notifying.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyAlert(ctx, a); err != nil {
			s.log.Error().Err(err).Str("alert_id", a.ID).Msg("alert notification failed")
		}
	}()
}
