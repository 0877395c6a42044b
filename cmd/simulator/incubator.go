package main

import (
	"math/rand"
)

// Firmware control band and alert limits.
const (
	heaterOnBelow  = 37.3
	heaterOffAbove = 38.0
	alertTempAbove = heaterOffAbove + 1.0
	humidityLow    = 45.0
	humidityHigh   = 75.0
)

// incubator is a crude thermal model of the egg incubator and its
// controller.
type incubator struct {
	rng         *rand.Rand
	temperature float64
	humidity    float64
	heater      bool
	// set through the control topic to force an overheat
	forceHighTemp bool
}

func newIncubator(rng *rand.Rand) *incubator {
	return &incubator{rng: rng, temperature: 37.5, humidity: 60}
}

// step advances the model by one sensor period and reports whether the
// controller would raise an alert.
func (in *incubator) step() bool {
	if in.heater {
		in.temperature += 0.05 + in.rng.Float64()*0.1
	} else {
		in.temperature -= 0.03 + in.rng.Float64()*0.05
	}
	if in.forceHighTemp {
		in.temperature += 0.4
	}
	in.humidity = clamp(in.humidity+(in.rng.Float64()-0.5), 30, 90)

	in.heater = heaterFor(in.temperature, in.heater)
	return alertCondition(in.temperature, in.humidity)
}

// heaterFor applies the hysteresis: on below the band, off above it and
// unchanged inside it.
func heaterFor(temperature float64, on bool) bool {
	switch {
	case temperature < heaterOnBelow:
		return true
	case temperature > heaterOffAbove:
		return false
	default:
		return on
	}
}

func alertCondition(temperature, humidity float64) bool {
	return temperature > alertTempAbove || humidity < humidityLow || humidity > humidityHigh
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
