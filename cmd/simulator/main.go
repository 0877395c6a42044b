package main

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/bridge"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/config"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/logging"
)

const onlineBanner = "Smart Egg Incubator online!"

type temperatureMsg struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Heater bool    `json:"heater"`
	Time   int64   `json:"time"`
}

type humidityMsg struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Time  int64   `json:"time"`
}

type statusMsg struct {
	Alert       bool    `json:"alert"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

type controlMsg struct {
	SimulateHighTemp *bool `json:"simulate_high_temp"`
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogFormat(), "incubator-simulator")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefix := config.MQTTTopicPrefix()
	topics := bridge.TopicsFor(prefix)
	controlTopic := prefix + "/control"

	var mu sync.Mutex
	sim := newIncubator(rand.New(rand.NewSource(time.Now().UnixNano())))

	opts := mqtt.NewClientOptions().
		AddBroker(config.MQTTBroker()).
		SetClientID(config.SimClientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			c.Subscribe(controlTopic, 0, func(_ mqtt.Client, m mqtt.Message) {
				var ctl controlMsg
				if err := json.Unmarshal(m.Payload(), &ctl); err != nil || ctl.SimulateHighTemp == nil {
					log.Warn().Bytes("payload", m.Payload()).Msg("ignoring control message")
					return
				}
				mu.Lock()
				sim.forceHighTemp = *ctl.SimulateHighTemp
				mu.Unlock()
				log.Info().Bool("simulate_high_temp", *ctl.SimulateHighTemp).Msg("control applied")
			})
			c.Publish(topics.Status, 0, false, onlineBanner)
			log.Info().Str("broker", config.MQTTBroker()).Msg("simulator connected")
		})
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	publish := func(topic string, v any) {
		payload, _ := json.Marshal(v)
		if token := client.Publish(topic, config.MQTTQoS(), false, payload); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", topic).Msg("publish failed")
		}
	}

	start := time.Now()
	readTick := time.NewTicker(config.SimReadInterval())
	defer readTick.Stop()
	publishTick := time.NewTicker(config.SimPublishInterval())
	defer publishTick.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("simulation stopped")
			return

		case <-readTick.C:
			mu.Lock()
			alert := sim.step()
			snapshot := statusMsg{Alert: true, Temperature: round2(sim.temperature), Humidity: round2(sim.humidity)}
			mu.Unlock()
			if alert {
				log.Warn().Float64("temperature", snapshot.Temperature).Float64("humidity", snapshot.Humidity).Msg("alert condition")
				publish(topics.Status, snapshot)
			}

		case <-publishTick.C:
			uptime := int64(time.Since(start).Seconds())
			mu.Lock()
			t := temperatureMsg{Value: round2(sim.temperature), Unit: "C", Heater: sim.heater, Time: uptime}
			h := humidityMsg{Value: round2(sim.humidity), Unit: "%", Time: uptime}
			mu.Unlock()
			publish(topics.Temperature, t)
			publish(topics.Humidity, h)
			log.Debug().Float64("temperature", t.Value).Float64("humidity", h.Value).Bool("heater", t.Heater).Msg("telemetry published")
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
