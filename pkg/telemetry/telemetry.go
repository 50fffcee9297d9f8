// Package telemetry implements the runtime's best-effort telemetry
// collector. Recording never blocks the caller: OTel instruments are updated
// inline, while sink delivery is handed to a small worker pool with bounded
// retry. A saturated pool or a dead sink drops events instead of stalling
// the host's UI thread.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/hostbridge/addin-runtime/api"
)

const instrumentationName = "github.com/hostbridge/addin-runtime"

// Sink is the delivery boundary to the external telemetry transport. Deliver
// is called from pool workers, never from the UI thread.
type Sink interface {
	Deliver(name string, attrs map[string]string) error
}

// Config holds collector creation parameters. Zero values get working
// defaults: noop OTel providers, one worker, three delivery retries.
type Config struct {
	Meter         metric.Meter
	Tracer        trace.Tracer
	Sink          Sink
	Workers       int
	MaxRetries    uint64
	RetryInterval time.Duration
}

// DefaultConfig returns a config that records to noop OTel providers and no
// sink.
func DefaultConfig() Config {
	return Config{
		Meter:         metricnoop.NewMeterProvider().Meter(instrumentationName),
		Tracer:        tracenoop.NewTracerProvider().Tracer(instrumentationName),
		Workers:       1,
		MaxRetries:    3,
		RetryInterval: 50 * time.Millisecond,
	}
}

// Collector implements api.Collector.
type Collector struct {
	conf    Config
	pool    *ants.Pool
	events  metric.Int64Counter
	crashes metric.Int64Counter
	closed  atomic.Bool
}

var _ api.Collector = (*Collector)(nil)

// NewCollector builds a collector. The worker pool is non-blocking: when all
// workers are busy and the backlog is full, dispatch drops the event.
func NewCollector(conf Config) (*Collector, error) {
	def := DefaultConfig()
	if conf.Meter == nil {
		conf.Meter = def.Meter
	}
	if conf.Tracer == nil {
		conf.Tracer = def.Tracer
	}
	if conf.Workers <= 0 {
		conf.Workers = def.Workers
	}
	if conf.MaxRetries == 0 {
		conf.MaxRetries = def.MaxRetries
	}
	if conf.RetryInterval <= 0 {
		conf.RetryInterval = def.RetryInterval
	}

	pool, err := ants.NewPool(conf.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	events, err := conf.Meter.Int64Counter("addin.telemetry.events",
		metric.WithDescription("Lifecycle events recorded by the addin runtime."))
	if err != nil {
		return nil, err
	}
	crashes, err := conf.Meter.Int64Counter("addin.telemetry.crashes",
		metric.WithDescription("Crash sequences recorded by the addin runtime."))
	if err != nil {
		return nil, err
	}
	return &Collector{conf: conf, pool: pool, events: events, crashes: crashes}, nil
}

// RecordEvent records a named lifecycle event.
func (c *Collector) RecordEvent(name string, attrs map[string]string) {
	if c.closed.Load() {
		return
	}
	ctx := context.Background()
	c.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))
	_, span := c.conf.Tracer.Start(ctx, name, trace.WithAttributes(attrsToKV(attrs)...))
	span.End()
	c.dispatch(name, attrs)
}

// RecordCrash records one crash sequence.
func (c *Collector) RecordCrash(message string) {
	if c.closed.Load() {
		return
	}
	ctx := context.Background()
	c.crashes.Add(ctx, 1)
	_, span := c.conf.Tracer.Start(ctx, "crash",
		trace.WithAttributes(attribute.String("message", message)))
	span.End()
	c.dispatch("crash", map[string]string{"message": message})
}

func (c *Collector) dispatch(name string, attrs map[string]string) {
	if c.conf.Sink == nil {
		return
	}
	err := c.pool.Submit(func() {
		op := func() error { return c.conf.Sink.Deliver(name, attrs) }
		policy := backoff.WithMaxRetries(
			backoff.NewConstantBackOff(c.conf.RetryInterval), c.conf.MaxRetries)
		if err := backoff.Retry(op, policy); err != nil {
			Logger().Warn("telemetry delivery dropped",
				zap.String("event", name), zap.Error(err))
		}
	})
	if err != nil {
		Logger().Debug("telemetry pool saturated, event dropped",
			zap.String("event", name))
	}
}

// Close drains in-flight deliveries and releases the pool. Safe to call more
// than once.
func (c *Collector) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.pool.ReleaseTimeout(time.Second); err != nil {
		Logger().Warn("telemetry pool did not drain", zap.Error(err))
	}
	return nil
}

func attrsToKV(attrs map[string]string) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	return kv
}
