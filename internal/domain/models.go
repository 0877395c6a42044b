package domain

import (
	"fmt"
	"time"
)

// Kind identifies what a Reading measures.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindHumidity    Kind = "humidity"
)

// ParseKind accepts the wire names used by the query API.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTemperature, KindHumidity:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown reading type %q", ErrInvalidArgument, s)
}

// Reading is one immutable sensor measurement.
type Reading struct {
	ID           string    `db:"id" json:"_id"`
	Kind         Kind      `db:"type" json:"type"`
	Value        float64   `db:"value" json:"value"`
	Unit         string    `db:"unit" json:"unit"`
	HeaterActive *bool     `db:"heater_state" json:"heaterState,omitempty"`
	RecordedAt   time.Time `db:"recorded_at" json:"timestamp"`
}

// Alert is an out-of-range condition reported by a status event.
// Resolved only moves from false to true.
type Alert struct {
	ID          string    `db:"id" json:"_id"`
	Temperature float64   `db:"temperature" json:"temperature"`
	Humidity    float64   `db:"humidity" json:"humidity"`
	Message     string    `db:"message" json:"message"`
	Resolved    bool      `db:"resolved" json:"resolved"`
	RaisedAt    time.Time `db:"raised_at" json:"timestamp"`
}

// Severity is the display classification of an alert.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return Severity(s), nil
	}
	return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidArgument, s)
}
