package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
)

// Uploader stores one archive document and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// ArchiveResult describes one uploaded collection.
type ArchiveResult struct {
	Collection string
	Key        string
	URL        string
	Count      int
}

// Archiver exports the full reading and alert history. It only reads from
// the stores.
type Archiver struct {
	repos    *repository.Repos
	up       Uploader
	pageSize int
	log      zerolog.Logger
	now      func() time.Time
}

func NewArchiver(repos *repository.Repos, up Uploader, pageSize int, logger zerolog.Logger) *Archiver {
	if pageSize < 1 {
		pageSize = 500
	}
	return &Archiver{
		repos:    repos,
		up:       up,
		pageSize: pageSize,
		log:      logger.With().Str("component", "archiver").Logger(),
		now:      time.Now,
	}
}

// Run uploads the readings and then the alerts, each as one JSON array
// ordered newest first.
func (a *Archiver) Run(ctx context.Context) ([]ArchiveResult, error) {
	stamp := a.now().UTC().Format("20060102T150405Z")

	readings, err := a.allReadings(ctx)
	if err != nil {
		return nil, err
	}
	r1, err := a.upload(ctx, "readings", stamp, readings, len(readings))
	if err != nil {
		return nil, err
	}

	alerts, err := a.allAlerts(ctx)
	if err != nil {
		return []ArchiveResult{r1}, err
	}
	r2, err := a.upload(ctx, "alerts", stamp, alerts, len(alerts))
	if err != nil {
		return []ArchiveResult{r1}, err
	}
	return []ArchiveResult{r1, r2}, nil
}

func (a *Archiver) allReadings(ctx context.Context) ([]domain.Reading, error) {
	out := []domain.Reading{}
	for skip := 0; ; skip += a.pageSize {
		page, err := a.repos.Readings.Find(ctx, repository.ReadingFilter{Limit: a.pageSize, Skip: skip})
		if err != nil {
			return nil, fmt.Errorf("archive readings at %d: %w", skip, err)
		}
		out = append(out, page...)
		if len(page) < a.pageSize {
			return out, nil
		}
	}
}

func (a *Archiver) allAlerts(ctx context.Context) ([]AlertView, error) {
	out := []AlertView{}
	for skip := 0; ; skip += a.pageSize {
		page, err := a.repos.Alerts.Find(ctx, repository.AlertFilter{Limit: a.pageSize, Skip: skip})
		if err != nil {
			return nil, fmt.Errorf("archive alerts at %d: %w", skip, err)
		}
		for _, al := range page {
			out = append(out, View(al))
		}
		if len(page) < a.pageSize {
			return out, nil
		}
	}
}

func (a *Archiver) upload(ctx context.Context, collection, stamp string, doc any, count int) (ArchiveResult, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("encode %s archive: %w", collection, err)
	}

	key := fmt.Sprintf("archives/%s/%s.json", collection, stamp)
	url, err := a.up.Upload(ctx, key, data)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("upload %s archive: %w", collection, err)
	}

	a.log.Info().Str("collection", collection).Str("key", key).Int("count", count).Msg("archive uploaded")
	return ArchiveResult{Collection: collection, Key: key, URL: url, Count: count}, nil
}
