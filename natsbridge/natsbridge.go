// Package natsbridge forwards NATS messages on a configured subject
// into an fsm.Engine's event queue via Raise, and optionally republishes
// every Step result back onto NATS for other services to observe. It is
// the engine's distributed front door: one process runs the engine,
// others drive and watch it over the wire.
package natsbridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fluxorio/iotfsm/diagnostics"
	"github.com/fluxorio/iotfsm/fsm"
	"github.com/fluxorio/iotfsm/internal/corelog"
)

// Config configures a Bridge's connection and subject layout.
type Config struct {
	// URL is the NATS server URL. Defaults to nats.DefaultURL.
	URL string
	// Name is an optional connection name, useful in NATS server
	// monitoring when many engines share a cluster.
	Name string
	// Prefix is prepended to every subject the bridge uses. Defaults to
	// "iotfsm".
	Prefix string
	// EventSubject is the subject the bridge subscribes to for inbound
	// events; incoming payloads are decoded as inboundEvent. Defaults to
	// "<prefix>.events.raise".
	EventSubject string
	// StepSubject is the subject step results are published to. Empty
	// disables result publishing.
	StepSubject string
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.Prefix == "" {
		c.Prefix = "iotfsm"
	}
	if c.EventSubject == "" {
		c.EventSubject = c.Prefix + ".events.raise"
	}
	return c
}

// inboundEvent is the wire shape for a raised event.
type inboundEvent struct {
	Event uint64        `json:"event"`
	Args  []interface{} `json:"args,omitempty"`
}

// Bridge owns a NATS connection and subscription bridging inbound
// messages to engine.Raise.
type Bridge struct {
	cfg    Config
	nc     *nats.Conn
	sub    *nats.Subscription
	engine *fsm.Engine
	logger corelog.Logger
}

// Connect dials NATS and subscribes cfg.EventSubject, forwarding every
// decodable message to engine.Raise. It reports an error if the
// connection or subscription fails; callers must call Close when done.
func Connect(cfg Config, engine *fsm.Engine, logger corelog.Logger) (*Bridge, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = corelog.New()
	}
	nc, err := nats.Connect(cfg.URL, func(o *nats.Options) error {
		if cfg.Name != "" {
			o.Name = cfg.Name
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("natsbridge: connect: %w", err)
	}

	b := &Bridge{cfg: cfg, nc: nc, engine: engine, logger: logger}
	sub, err := nc.Subscribe(cfg.EventSubject, b.handleMessage)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsbridge: subscribe %s: %w", cfg.EventSubject, err)
	}
	b.sub = sub
	return b, nil
}

func (b *Bridge) handleMessage(msg *nats.Msg) {
	var ev inboundEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		b.logger.Warnf("natsbridge: dropped malformed message on %s: %v", msg.Subject, err)
		return
	}
	if !b.engine.Raise(ev.Event, ev.Args...) {
		b.logger.Debugf("natsbridge: event %d not accepted from current state", ev.Event)
	}
}

// PublishResult republishes a Step outcome on cfg.StepSubject, if
// configured. Intended to be wired as a diagnostics.Diagnostics sink
// (via ResultSink) rather than called directly by most callers.
func (b *Bridge) PublishResult(rec diagnostics.Record) error {
	if b.cfg.StepSubject == "" {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("natsbridge: marshal step result: %w", err)
	}
	return b.nc.Publish(b.cfg.StepSubject, data)
}

// ResultSink adapts Bridge to diagnostics.Diagnostics, republishing
// every observed record and swallowing publish errors beyond a log
// line — a slow or unreachable broker must never block the engine's
// Step call, which holds the engine lock while reporting.
type ResultSink struct {
	Bridge *Bridge
	Logger corelog.Logger
}

// Observe implements diagnostics.Diagnostics.
func (s ResultSink) Observe(rec diagnostics.Record) {
	if s.Bridge == nil {
		return
	}
	if err := s.Bridge.PublishResult(rec); err != nil && s.Logger != nil {
		s.Logger.Warnf("natsbridge: publish failed: %v", err)
	}
}

// Drain unsubscribes and waits up to timeout for in-flight messages to
// be processed before returning, regardless of whether the deadline was
// reached.
func (b *Bridge) Drain(timeout time.Duration) error {
	if b.sub == nil {
		return nil
	}
	b.nc.SetClosedHandler(nil)
	if err := b.sub.Drain(); err != nil {
		return fmt.Errorf("natsbridge: drain: %w", err)
	}
	deadline := time.Now().Add(timeout)
	for b.nc.NumSubscriptions() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// Close unsubscribes and closes the underlying NATS connection.
func (b *Bridge) Close() {
	if b.sub != nil {
		b.sub.Unsubscribe()
	}
	b.nc.Close()
}
