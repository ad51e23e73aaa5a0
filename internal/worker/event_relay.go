package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shareit/internal/events"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EventRelay copies booking events onto a Redis list for consumers outside the
// process. Delivery happens inside Publish and is bounded by timeout.
type EventRelay struct {
	redis         *redis.Client
	listKey       string
	deadLetterKey string
	timeout       time.Duration
	retryPolicy   RetryPolicy
	logger        *zerolog.Logger
}

func NewEventRelay(client *redis.Client, listKey string, timeout time.Duration, retry RetryPolicy, logger *zerolog.Logger) *EventRelay {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	return &EventRelay{
		redis:         client,
		listKey:       listKey,
		deadLetterKey: listKey + ":dead",
		timeout:       timeout,
		retryPolicy:   retry,
		logger:        logger,
	}
}

// relayedEvent is the JSON document pushed to the list.
type relayedEvent struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Attach subscribes the relay to every booking event on bus.
func (r *EventRelay) Attach(bus *events.EventBus) {
	bus.SubscribeAll(events.BookingEvents, r.Handle)
}

// Handle pushes event to the list, retrying until the policy or the timeout
// runs out. Undeliverable events go to the dead-letter list.
func (r *EventRelay) Handle(event *events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.deliver(ctx, event)
}

func (r *EventRelay) deliver(ctx context.Context, event *events.Event) error {
	data, err := json.Marshal(relayedEvent{Type: event.Type, Payload: event.Payload, CreatedAt: event.CreatedAt})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	for attempt := 1; ; attempt++ {
		err := r.redis.RPush(ctx, r.listKey, data).Err()
		if err == nil {
			return nil
		}
		if r.retryPolicy.Exhausted(attempt) || !sleepCtx(ctx, r.retryPolicy.NextDelay(attempt)) {
			r.logger.Error().Err(err).Str("event", event.Type).Int("attempts", attempt).Msg("event relay failed")
			r.pushDeadLetter(data)
			return fmt.Errorf("relay %s: %w", event.Type, err)
		}
	}
}

func (r *EventRelay) pushDeadLetter(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.redis.RPush(ctx, r.deadLetterKey, data).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("event relay: dead letter push failed")
	}
}
