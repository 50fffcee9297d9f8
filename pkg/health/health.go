// Package health exposes the attached addin session over the standard
// liveness/readiness surface: live while a session is attached, ready while
// events are subscribed and the idle queue is keeping up.
package health

import (
	"errors"
	"fmt"
	"sync"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hostbridge/addin-runtime/addin"
)

// DefaultQueueSoftLimit is the pending-task count above which readiness
// fails: the host is not idling often enough to drain deferred work.
const DefaultQueueSoftLimit = 128

// Options tunes the handler.
type Options struct {
	QueueSoftLimit int
}

var gaugeOnce sync.Once

// NewHandler builds a healthcheck handler over the live session. The handler
// serves GET /live and GET /ready and doubles as the queue-depth gauge
// registration point.
func NewHandler(session *addin.Session, scheduler *addin.IdleTaskScheduler, registry *addin.SubscriptionRegistry, opts Options) healthcheck.Handler {
	limit := opts.QueueSoftLimit
	if limit <= 0 {
		limit = DefaultQueueSoftLimit
	}

	h := healthcheck.NewHandler()
	h.AddLivenessCheck("session-attached", func() error {
		if !session.Attached() {
			return errors.New("session detached")
		}
		return nil
	})
	h.AddReadinessCheck("events-subscribed", func() error {
		if !session.EventsSubscribed() {
			return errors.New("host events not subscribed")
		}
		return nil
	})
	h.AddReadinessCheck("idle-queue-depth", func() error {
		if n := scheduler.Pending(); n > limit {
			return fmt.Errorf("idle queue backlog %d exceeds %d", n, limit)
		}
		return nil
	})
	h.AddReadinessCheck("subscriptions-present", func() error {
		if registry.ActiveCount() == 0 {
			return errors.New("no active host subscriptions")
		}
		return nil
	})

	gaugeOnce.Do(func() {
		gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "addin_idle_queue_depth",
			Help: "Number of tasks waiting for the next idle tick.",
		}, func() float64 { return float64(scheduler.Pending()) })
		if err := prometheus.Register(gauge); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	})

	return h
}
