// Package bridge subscribes to the sensor topics on the MQTT broker, decodes
// each payload against its channel schema and hands the result to a Sink.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

// Sink consumes decoded messages. Errors are logged by the bridge and the
// message is dropped.
type Sink interface {
	Temperature(ctx context.Context, t domain.TemperatureTelemetry, raw json.RawMessage) error
	Humidity(ctx context.Context, h domain.HumidityTelemetry, raw json.RawMessage) error
	Status(ctx context.Context, ev domain.StatusEvent) error
}

// Topics maps each channel onto a broker topic.
type Topics struct {
	Temperature string
	Humidity    string
	Status      string
}

func TopicsFor(prefix string) Topics {
	return Topics{
		Temperature: prefix + "/temperature",
		Humidity:    prefix + "/humidity",
		Status:      prefix + "/status",
	}
}

func (t Topics) byChannel() map[Channel]string {
	return map[Channel]string{
		ChannelTemperature: t.Temperature,
		ChannelHumidity:    t.Humidity,
		ChannelStatus:      t.Status,
	}
}

type Options struct {
	Broker               string
	ClientID             string
	Username             string
	Password             string
	Topics               Topics
	QoS                  byte
	QueueSize            int
	MaxReconnectInterval time.Duration
	HandleTimeout        time.Duration
}

// Stats is a snapshot of bridge counters.
type Stats struct {
	State        string `json:"state"`
	Processed    uint64 `json:"processed"`
	DecodeErrors uint64 `json:"decode_errors"`
	IngestErrors uint64 `json:"ingest_errors"`
}

type Bridge struct {
	opts      Options
	sink      Sink
	log       zerolog.Logger
	newClient func(*mqtt.ClientOptions) mqtt.Client

	state    stateMachine
	queues   map[Channel]chan []byte
	handlers map[Channel]mqtt.MessageHandler
	stopping chan struct{}
	workers  sync.WaitGroup

	processed    atomic.Uint64
	decodeErrors atomic.Uint64
	ingestErrors atomic.Uint64
}

func New(opts Options, sink Sink, logger zerolog.Logger) *Bridge {
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.HandleTimeout <= 0 {
		opts.HandleTimeout = 5 * time.Second
	}
	if opts.MaxReconnectInterval <= 0 {
		opts.MaxReconnectInterval = 30 * time.Second
	}

	b := &Bridge{
		opts:      opts,
		sink:      sink,
		log:       logger.With().Str("component", "bridge").Logger(),
		newClient: mqtt.NewClient,
		queues:    make(map[Channel]chan []byte),
		handlers:  make(map[Channel]mqtt.MessageHandler),
		stopping:  make(chan struct{}),
	}
	for ch := range opts.Topics.byChannel() {
		b.queues[ch] = make(chan []byte, opts.QueueSize)
		b.handlers[ch] = b.handlerFor(ch)
	}
	return b
}

// State reports the current connection state.
func (b *Bridge) State() State { return b.state.get() }

func (b *Bridge) Stats() Stats {
	return Stats{
		State:        b.State().String(),
		Processed:    b.processed.Load(),
		DecodeErrors: b.decodeErrors.Load(),
		IngestErrors: b.ingestErrors.Load(),
	}
}

// Run connects to the broker and processes messages until ctx is done.
// Queued messages are drained before Run returns.
func (b *Bridge) Run(ctx context.Context) error {
	for ch, q := range b.queues {
		b.workers.Add(1)
		go b.work(ch, q)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(b.opts.Broker).
		SetClientID(b.opts.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetMaxReconnectInterval(b.opts.MaxReconnectInterval).
		SetOrderMatters(true).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(b.onConnectionLost).
		SetReconnectingHandler(b.onReconnecting)
	if b.opts.Username != "" {
		opts.SetUsername(b.opts.Username)
		opts.SetPassword(b.opts.Password)
	}

	client := b.newClient(opts)
	b.transition(connectStarted)
	b.log.Info().Str("broker", b.opts.Broker).Msg("connecting to mqtt broker")

	// With ConnectRetry the token completes only once connected, so a
	// token error means the options themselves are unusable.
	token := client.Connect()
	go func() {
		select {
		case <-token.Done():
			if err := token.Error(); err != nil {
				b.transition(connectFailed)
				b.log.Error().Err(err).Msg("mqtt connect failed")
			}
		case <-ctx.Done():
		}
	}()

	<-ctx.Done()
	close(b.stopping)
	client.Disconnect(250)
	b.transition(transportDropped)
	b.workers.Wait()
	b.log.Info().Msg("bridge stopped")
	return nil
}

// onConnect runs on every successful connect, including automatic
// reconnects. Each topic is always subscribed with the same handler value,
// so re-subscribing replaces the route instead of adding a second one.
func (b *Bridge) onConnect(c mqtt.Client) {
	pending := b.opts.Topics.byChannel()
	backoff := time.Second

	for {
		for ch, topic := range pending {
			token := c.Subscribe(topic, b.opts.QoS, b.handlers[ch])
			if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
				b.log.Warn().Err(token.Error()).Str("topic", topic).Msg("subscribe failed")
				continue
			}
			b.log.Info().Str("topic", topic).Msg("subscribed")
			delete(pending, ch)
		}
		if len(pending) == 0 {
			b.transition(connectSucceeded)
			return
		}

		select {
		case <-b.stopping:
			return
		case <-time.After(backoff):
		}
		if !c.IsConnectionOpen() {
			// the connection-lost handler owns the state from here
			return
		}
		if backoff < b.opts.MaxReconnectInterval {
			backoff *= 2
		}
	}
}

func (b *Bridge) onConnectionLost(_ mqtt.Client, err error) {
	b.transition(transportDropped)
	b.log.Warn().Err(err).Msg("mqtt connection lost")
}

func (b *Bridge) onReconnecting(_ mqtt.Client, _ *mqtt.ClientOptions) {
	b.transition(connectStarted)
	b.log.Info().Msg("reconnecting to mqtt broker")
}

func (b *Bridge) transition(t transition) {
	from, to := b.state.fire(t)
	if from != to {
		b.log.Debug().Stringer("from", from).Stringer("to", to).Msg("bridge state changed")
	}
}

func (b *Bridge) handlerFor(ch Channel) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		b.enqueue(ch, m.Payload())
	}
}

// enqueue blocks while the channel's queue is full, which holds back the
// paho router until the worker catches up.
func (b *Bridge) enqueue(ch Channel, payload []byte) {
	p := append([]byte(nil), payload...)
	select {
	case b.queues[ch] <- p:
	case <-b.stopping:
		b.log.Warn().Str("channel", string(ch)).Msg("bridge stopping, message dropped")
	}
}

func (b *Bridge) work(ch Channel, q chan []byte) {
	defer b.workers.Done()
	for {
		select {
		case p := <-q:
			b.process(ch, p)
		case <-b.stopping:
			for {
				select {
				case p := <-q:
					b.process(ch, p)
				default:
					return
				}
			}
		}
	}
}

func (b *Bridge) process(ch Channel, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), b.opts.HandleTimeout)
	defer cancel()

	if err := b.Handle(ctx, ch, payload); err != nil {
		var de *domain.DecodeError
		if errors.As(err, &de) {
			b.log.Warn().Err(err).Str("channel", string(ch)).Bytes("payload", payload).Msg("malformed payload dropped")
			return
		}
		b.log.Error().Err(err).Str("channel", string(ch)).Msg("ingest failed, message dropped")
	}
}

// Handle decodes one payload and passes it to the sink. It never panics on
// bad input; the returned error is either a *domain.DecodeError or the
// sink's error.
func (b *Bridge) Handle(ctx context.Context, ch Channel, payload []byte) error {
	msg, err := Decode(ch, payload)
	if err != nil {
		b.decodeErrors.Add(1)
		return err
	}

	switch {
	case msg.Temperature != nil:
		err = b.sink.Temperature(ctx, *msg.Temperature, msg.Raw)
	case msg.Humidity != nil:
		err = b.sink.Humidity(ctx, *msg.Humidity, msg.Raw)
	case msg.Status != nil:
		err = b.sink.Status(ctx, *msg.Status)
	}
	if err != nil {
		b.ingestErrors.Add(1)
		return err
	}
	b.processed.Add(1)
	return nil
}
