package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

func seedReadings(t *testing.T, s ReadingStore, base time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		kind := domain.KindTemperature
		if i%2 == 1 {
			kind = domain.KindHumidity
		}
		_, err := s.Insert(context.Background(), domain.Reading{
			Kind: kind, Value: float64(i), RecordedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
}

func TestMemoryReadingsNewestFirstAndLimit(t *testing.T) {
	s := NewMemoryReadings()
	seedReadings(t, s, time.Now(), 10)

	for _, limit := range []int{1, 3, 10, 25} {
		out, err := s.Find(context.Background(), ReadingFilter{Limit: limit})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(out), limit)
		for i := 1; i < len(out); i++ {
			assert.False(t, out[i].RecordedAt.After(out[i-1].RecordedAt), "results must be newest first")
		}
	}
}

func TestMemoryReadingsKindFilterAndSkip(t *testing.T) {
	s := NewMemoryReadings()
	seedReadings(t, s, time.Now(), 10)

	kind := domain.KindHumidity
	first, err := s.Find(context.Background(), ReadingFilter{Kind: &kind, Limit: 2})
	require.NoError(t, err)
	second, err := s.Find(context.Background(), ReadingFilter{Kind: &kind, Limit: 2, Skip: 2})
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.Equal(t, []float64{9, 7}, []float64{first[0].Value, first[1].Value})
	assert.Equal(t, []float64{5, 3}, []float64{second[0].Value, second[1].Value})

	past, err := s.Find(context.Background(), ReadingFilter{Kind: &kind, Limit: 2, Skip: 50})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemoryReadingsOutOfOrderInsert(t *testing.T) {
	s := NewMemoryReadings()
	now := time.Now()
	_, _ = s.Insert(context.Background(), domain.Reading{Kind: domain.KindTemperature, Value: 2, RecordedAt: now})
	_, _ = s.Insert(context.Background(), domain.Reading{Kind: domain.KindTemperature, Value: 1, RecordedAt: now.Add(-time.Hour)})
	_, _ = s.Insert(context.Background(), domain.Reading{Kind: domain.KindTemperature, Value: 3, RecordedAt: now.Add(time.Hour)})

	out, err := s.Find(context.Background(), ReadingFilter{})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, []float64{out[0].Value, out[1].Value, out[2].Value})
}

func TestMemoryReadingsDuplicateIDIsIgnored(t *testing.T) {
	s := NewMemoryReadings()
	r := domain.Reading{ID: "same", Kind: domain.KindHumidity, Value: 50, RecordedAt: time.Now()}

	_, err := s.Insert(context.Background(), r)
	require.NoError(t, err)
	r.Value = 99
	_, err = s.Insert(context.Background(), r)
	require.NoError(t, err)

	out, _ := s.Find(context.Background(), ReadingFilter{})
	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].Value)
}

func TestMemoryReadingsAreCopiedOnInsert(t *testing.T) {
	s := NewMemoryReadings()
	on := true
	_, _ = s.Insert(context.Background(), domain.Reading{Kind: domain.KindTemperature, HeaterActive: &on, RecordedAt: time.Now()})
	on = false

	out, _ := s.Find(context.Background(), ReadingFilter{})
	require.NotNil(t, out[0].HeaterActive)
	assert.True(t, *out[0].HeaterActive)
}

func TestMemoryAlertsResolveIsIdempotent(t *testing.T) {
	s := NewMemoryAlerts()
	id, err := s.Insert(context.Background(), domain.Alert{Temperature: 40, Humidity: 60, RaisedAt: time.Now()})
	require.NoError(t, err)

	first, err := s.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, first.Resolved)

	second, err := s.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, second.Resolved)
	assert.Equal(t, first, second)

	_, err = s.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryAlertsFindFilterAndOrder(t *testing.T) {
	s := NewMemoryAlerts()
	now := time.Now()
	var ids []string
	for i := 0; i < 5; i++ {
		id, err := s.Insert(context.Background(), domain.Alert{Temperature: float64(i), RaisedAt: now.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := s.Resolve(context.Background(), ids[3])
	require.NoError(t, err)

	resolved := true
	out, err := s.Find(context.Background(), AlertFilter{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, ids[3], out[0].ID)

	open := false
	out, err = s.Find(context.Background(), AlertFilter{Resolved: &open, Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, ids[4], out[0].ID)
	assert.Equal(t, ids[2], out[1].ID)
}

func TestMemoryAlertsFindSkip(t *testing.T) {
	s := NewMemoryAlerts()
	now := time.Now()
	for i := 0; i < 4; i++ {
		_, err := s.Insert(context.Background(), domain.Alert{Temperature: float64(i), RaisedAt: now.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	out, err := s.Find(context.Background(), AlertFilter{Limit: 2, Skip: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Temperature)
	assert.Equal(t, 0.0, out[1].Temperature)
}

func TestMemoryAlertsFindReturnsCopies(t *testing.T) {
	s := NewMemoryAlerts()
	id, _ := s.Insert(context.Background(), domain.Alert{RaisedAt: time.Now()})

	out, _ := s.Find(context.Background(), AlertFilter{})
	out[0].Resolved = true

	again, _ := s.Find(context.Background(), AlertFilter{})
	assert.False(t, again[0].Resolved)
	assert.Equal(t, id, again[0].ID)
}

func TestMemoryStoresConcurrentAccess(t *testing.T) {
	repos := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = repos.Readings.Insert(context.Background(), domain.Reading{Kind: domain.KindTemperature, RecordedAt: time.Now()})
				_, _ = repos.Alerts.Insert(context.Background(), domain.Alert{RaisedAt: time.Now()})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = repos.Readings.Find(context.Background(), ReadingFilter{Limit: 10})
				_, _ = repos.Alerts.Find(context.Background(), AlertFilter{Limit: 10})
			}
		}()
	}
	wg.Wait()

	out, err := repos.Readings.Find(context.Background(), ReadingFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 400)
}
