package alerting

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

func TestEvaluateIgnoresEventsWithoutAlertFlag(t *testing.T) {
	// Values far outside the display thresholds still do not raise an alert.
	_, ok := Evaluate(domain.StatusEvent{Alert: false, Temperature: 45, Humidity: 10}, time.Now())
	assert.False(t, ok)
}

func TestEvaluateBuildsAlert(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	a, ok := Evaluate(domain.StatusEvent{Alert: true, Temperature: 39.5, Humidity: 58.2}, now)
	require.True(t, ok)

	assert.Equal(t, 39.5, a.Temperature)
	assert.Equal(t, 58.2, a.Humidity)
	assert.Equal(t, "Alert: Temperature: 39.5°C, Humidity: 58.2%", a.Message)
	assert.False(t, a.Resolved)
	assert.Equal(t, now.UTC(), a.RaisedAt)
	assert.Empty(t, a.ID)
}

func TestMessageFormatting(t *testing.T) {
	cases := []struct {
		t, h float64
		want string
	}{
		{40, 60, "Alert: Temperature: 40°C, Humidity: 60%"},
		{37.3, 44.9, "Alert: Temperature: 37.3°C, Humidity: 44.9%"},
		{-1.5, 100, "Alert: Temperature: -1.5°C, Humidity: 100%"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Message(c.t, c.h))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		t, h float64
		want domain.Severity
	}{
		{"hot", 40.0, 60, domain.SeveritySevere},
		{"normal", 37.5, 60, domain.SeverityMild},
		{"warm", 38.6, 60, domain.SeverityModerate},
		{"cold", 36.4, 60, domain.SeveritySevere},
		{"cool", 36.9, 60, domain.SeverityModerate},
		{"humid", 37.5, 76, domain.SeveritySevere},
		{"damp", 37.5, 71, domain.SeverityModerate},
		{"dry", 37.5, 44, domain.SeveritySevere},
		{"dryish", 37.5, 49, domain.SeverityModerate},
		{"upper edges", 39.0, 75, domain.SeverityModerate},
		{"lower edges", 36.5, 45, domain.SeverityModerate},
		{"mild edges", 38.5, 70, domain.SeverityMild},
		{"severe wins over moderate", 38.6, 80, domain.SeveritySevere},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.t, c.h))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	valid := map[domain.Severity]bool{
		domain.SeverityMild: true, domain.SeverityModerate: true, domain.SeveritySevere: true,
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, 37.5} {
		for _, h := range []float64{math.NaN(), math.Inf(1), 60} {
			got := Classify(v, h)
			assert.True(t, valid[got], "classify(%v, %v) = %q", v, h, got)
			assert.Equal(t, got, Classify(v, h))
		}
	}
}
