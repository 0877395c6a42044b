// Package alerting turns status events into alert records and classifies
// existing alerts for display.
//
// Creation follows the controller's own alert flag only. The thresholds in
// Classify are display thresholds and are never used to create alerts.
package alerting

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

// Evaluate returns the alert to persist for ev, or false when ev does not
// flag an alert condition. The returned alert has no id yet.
func Evaluate(ev domain.StatusEvent, now time.Time) (domain.Alert, bool) {
	if !ev.Alert {
		return domain.Alert{}, false
	}
	return domain.Alert{
		Temperature: ev.Temperature,
		Humidity:    ev.Humidity,
		Message:     Message(ev.Temperature, ev.Humidity),
		RaisedAt:    now.UTC(),
	}, true
}

// Message renders the operator text for an alert snapshot.
func Message(temperature, humidity float64) string {
	return fmt.Sprintf("Alert: Temperature: %s°C, Humidity: %s%%", formatValue(temperature), formatValue(humidity))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Classify maps an alert's snapshot onto a display severity.
func Classify(temperature, humidity float64) domain.Severity {
	switch {
	case temperature > 39.0 || temperature < 36.5 || humidity > 75 || humidity < 45:
		return domain.SeveritySevere
	case temperature > 38.5 || temperature < 37.0 || humidity > 70 || humidity < 50:
		return domain.SeverityModerate
	default:
		return domain.SeverityMild
	}
}

// SeverityOf is Classify applied to a stored alert.
func SeverityOf(a domain.Alert) domain.Severity {
	return Classify(a.Temperature, a.Humidity)
}
