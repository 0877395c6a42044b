package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

// Channel is a logical inbound channel, independent of the topic prefix.
type Channel string

const (
	ChannelTemperature Channel = "temperature"
	ChannelHumidity    Channel = "humidity"
	ChannelStatus      Channel = "status"
)

// Wire schemas. Pointers mark required fields so absence can be told apart
// from a zero value.
type temperaturePayload struct {
	Value     *float64   `json:"value"`
	Unit      string     `json:"unit"`
	Heater    bool       `json:"heater"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type humidityPayload struct {
	Value     *float64   `json:"value"`
	Unit      string     `json:"unit"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type statusPayload struct {
	Alert       *bool    `json:"alert"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Message is a successfully decoded inbound payload. Exactly one of the typed
// fields is set, matching Channel.
type Message struct {
	Channel     Channel
	Raw         json.RawMessage
	Temperature *domain.TemperatureTelemetry
	Humidity    *domain.HumidityTelemetry
	Status      *domain.StatusEvent
}

var (
	errMissingField   = errors.New("missing required field")
	errUnknownChannel = errors.New("unknown channel")
)

// Decode validates payload against the schema of ch.
func Decode(ch Channel, payload []byte) (Message, error) {
	msg := Message{Channel: ch, Raw: json.RawMessage(append([]byte(nil), payload...))}

	switch ch {
	case ChannelTemperature:
		var p temperaturePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Message{}, decodeErr(ch, err)
		}
		if p.Value == nil {
			return Message{}, decodeErr(ch, fmt.Errorf("%w: value", errMissingField))
		}
		unit := p.Unit
		if unit == "" {
			unit = "C"
		}
		msg.Temperature = &domain.TemperatureTelemetry{
			Value: *p.Value, Unit: unit, Heater: p.Heater, RecordedAt: p.Timestamp,
		}

	case ChannelHumidity:
		var p humidityPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Message{}, decodeErr(ch, err)
		}
		if p.Value == nil {
			return Message{}, decodeErr(ch, fmt.Errorf("%w: value", errMissingField))
		}
		unit := p.Unit
		if unit == "" {
			unit = "%"
		}
		msg.Humidity = &domain.HumidityTelemetry{
			Value: *p.Value, Unit: unit, RecordedAt: p.Timestamp,
		}

	case ChannelStatus:
		var p statusPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Message{}, decodeErr(ch, err)
		}
		if p.Alert == nil {
			return Message{}, decodeErr(ch, fmt.Errorf("%w: alert", errMissingField))
		}
		ev := domain.StatusEvent{Alert: *p.Alert}
		if ev.Alert {
			if p.Temperature == nil || p.Humidity == nil {
				return Message{}, decodeErr(ch, fmt.Errorf("%w: temperature and humidity", errMissingField))
			}
		}
		if p.Temperature != nil {
			ev.Temperature = *p.Temperature
		}
		if p.Humidity != nil {
			ev.Humidity = *p.Humidity
		}
		msg.Status = &ev

	default:
		return Message{}, decodeErr(ch, errUnknownChannel)
	}
	return msg, nil
}

func decodeErr(ch Channel, err error) error {
	return &domain.DecodeError{Channel: string(ch), Err: err}
}
