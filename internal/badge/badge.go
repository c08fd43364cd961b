// Package badge triggers gamification badge evaluation after a successful
// check-in. Delivery is best-effort and fully decoupled from the check-in
// request path: a failed or slow badge service never affects attendance.
package badge

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	id "muster/pkg/domain"
	"muster/pkg/platform/circuit"
)

const (
	notifyTimeout = 2 * time.Second

	// With the circuit open, every probeEvery-th trigger is still attempted
	// so a recovered badge service closes the circuit again.
	probeEvery = 10
)

// Trigger identifies a check-in that may unlock badges.
type Trigger struct {
	VolunteerID id.VolunteerID
	EventID     id.EventID
	CheckedInAt time.Time
}

// Notifier delivers a badge trigger to the evaluation backend.
type Notifier interface {
	Notify(ctx context.Context, trigger Trigger) error
}

// Metrics counts dispatcher outcomes.
type Metrics struct {
	Dropped   prometheus.Counter
	Skipped   prometheus.Counter
	Failed    prometheus.Counter
	Delivered prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_badge_triggers_dropped_total",
			Help: "Badge triggers dropped because the dispatcher inbox was full",
		}),
		Skipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_badge_triggers_skipped_total",
			Help: "Badge triggers skipped while the badge service circuit was open",
		}),
		Failed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_badge_triggers_failed_total",
			Help: "Badge triggers that failed delivery to the badge service",
		}),
		Delivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_badge_triggers_delivered_total",
			Help: "Badge triggers delivered to the badge service",
		}),
	}
}

// Dispatcher queues badge triggers and delivers them from a background
// goroutine. Enqueue never blocks: when the inbox is full the trigger is
// dropped and counted.
type Dispatcher struct {
	notifier Notifier
	inbox    chan Trigger
	logger   *slog.Logger
	metrics  *Metrics
	breaker  *circuit.Breaker

	skipped int // only touched from the Run goroutine
}

func NewDispatcher(notifier Notifier, inboxSize int, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	if inboxSize <= 0 {
		inboxSize = 64
	}
	return &Dispatcher{
		notifier: notifier,
		inbox:    make(chan Trigger, inboxSize),
		logger:   logger,
		metrics:  metrics,
		breaker: circuit.New("badge-notifier",
			circuit.WithFailureThreshold(5),
			circuit.WithSuccessThreshold(2),
		),
	}
}

// Enqueue hands a trigger to the background worker. Safe to call from the
// request path.
func (d *Dispatcher) Enqueue(trigger Trigger) {
	select {
	case d.inbox <- trigger:
	default:
		if d.metrics != nil {
			d.metrics.Dropped.Inc()
		}
		d.logger.Warn("badge inbox full, dropping trigger",
			"volunteer_id", trigger.VolunteerID.String(),
			"event_id", trigger.EventID.String(),
		)
	}
}

// Run drains the inbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case trigger := <-d.inbox:
			d.deliver(trigger)
		}
	}
}

func (d *Dispatcher) deliver(trigger Trigger) {
	if d.breaker.IsOpen() {
		d.skipped++
		if d.skipped%probeEvery != 0 {
			if d.metrics != nil {
				d.metrics.Skipped.Inc()
			}
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, trigger); err != nil {
		if _, change := d.breaker.RecordFailure(); change.Opened {
			d.skipped = 0
			d.logger.Warn("badge service circuit opened", "breaker", d.breaker.Name())
		}
		if d.metrics != nil {
			d.metrics.Failed.Inc()
		}
		d.logger.Warn("badge notification failed",
			"error", err,
			"volunteer_id", trigger.VolunteerID.String(),
			"event_id", trigger.EventID.String(),
		)
		return
	}
	if _, change := d.breaker.RecordSuccess(); change.Closed {
		d.logger.Info("badge service circuit closed", "breaker", d.breaker.Name())
	}
	if d.metrics != nil {
		d.metrics.Delivered.Inc()
	}
}
