package domain

import "time"

// TemperatureTelemetry is the decoded payload of the temperature channel.
type TemperatureTelemetry struct {
	Value      float64
	Unit       string
	Heater     bool
	RecordedAt *time.Time
}

// HumidityTelemetry is the decoded payload of the humidity channel.
type HumidityTelemetry struct {
	Value      float64
	Unit       string
	RecordedAt *time.Time
}

// StatusEvent is the controller's environmental snapshot plus its alert flag.
type StatusEvent struct {
	Alert       bool
	Temperature float64
	Humidity    float64
}

// Realtime event names pushed to observers.
const (
	EventTemperature = "temperature"
	EventHumidity    = "humidity"
	EventAlert       = "alert"
)
