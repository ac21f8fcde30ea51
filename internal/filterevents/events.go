// Package filterevents publishes benchmark completion events to Kafka as
// typed JSON events. Each publish call waits for the producer and returns
// its error.
package filterevents

import (
	"context"
	"time"

	"github.com/rsavio/attrfilter/pkg/kafka"
)

// EventType names the kind of event published on the filtering-events topic.
type EventType string

const (
	// EventRunCompleted marks a full grid sweep finishing without a
	// guarantee violation.
	EventRunCompleted EventType = "run_completed"
	// EventInvariantViolation marks a run aborted because a strategy
	// breached its approximation or ordering guarantee.
	EventInvariantViolation EventType = "invariant_violation"
)

// RunCompletedEvent summarises one grid sweep for downstream consumers
// (dashboards, alerting) without shipping the full report payload.
type RunCompletedEvent struct {
	Type             EventType `json:"type"`
	Label            string    `json:"label"`
	NumListsAssessed int       `json:"num_lists_assessed"`
	NumCombinations  int       `json:"num_combinations"`
	DurationMs       int64     `json:"duration_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

// InvariantViolationEvent reports a strategy that failed its guarantee
// mid-run, carrying enough context to locate the offending list and
// combination without re-running the sweep.
type InvariantViolationEvent struct {
	Type      EventType `json:"type"`
	Label     string    `json:"label"`
	Strategy  string    `json:"strategy"`
	NCut      int       `json:"n_cut"`
	K         int       `json:"k"`
	ListName  string    `json:"list_name"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits filtering benchmark events to Kafka.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher wraps a kafka.Producer already configured for the
// filtering-events topic.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

// PublishRunCompleted emits a RunCompletedEvent.
func (p *Publisher) PublishRunCompleted(ctx context.Context, event RunCompletedEvent) error {
	return p.producer.Publish(ctx, kafka.Event{Key: event.Label, Value: event})
}

// PublishInvariantViolation emits an InvariantViolationEvent.
func (p *Publisher) PublishInvariantViolation(ctx context.Context, event InvariantViolationEvent) error {
	return p.producer.Publish(ctx, kafka.Event{Key: event.Label, Value: event})
}
