// Package service holds the application flows: the ingest pipeline fed by
// the MQTT bridge, the query side used by the HTTP API and the archive export.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/alerting"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/cache"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
)

// Publisher pushes named events to live observers.
type Publisher interface {
	Publish(name string, payload any)
}

// Notifier tells operators about a raised alert outside the dashboard.
type Notifier interface {
	NotifyAlert(ctx context.Context, a domain.Alert) error
}

// AlertView is the API and realtime representation of an alert.
type AlertView struct {
	domain.Alert
	Severity domain.Severity `json:"severity"`
}

func View(a domain.Alert) AlertView {
	return AlertView{Alert: a, Severity: alerting.SeverityOf(a)}
}

// Deps are the collaborators of the services. Latest, Publisher and Notifier
// are optional.
type Deps struct {
	Repos     *repository.Repos
	Latest    cache.LatestCache
	Publisher Publisher
	Notifier  Notifier
	Logger    zerolog.Logger
}

type Services struct {
	Repos    *repository.Repos
	Ingest   *IngestService
	Readings *ReadingService
	Alerts   *AlertService
}

func New(d Deps) *Services {
	if d.Latest == nil {
		d.Latest = cache.Nop{}
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	return &Services{
		Repos:    d.Repos,
		Ingest:   newIngestService(d),
		Readings: &ReadingService{repos: d.Repos, latest: d.Latest, log: d.Logger},
		Alerts:   &AlertService{repos: d.Repos},
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}
