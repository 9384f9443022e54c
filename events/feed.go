package events

import (
	"context"
	"errors"
	"log"

	"github.com/go-redis/redis/v8"
)

// Topics published by the repositories. Every event means "something
// changed, re-read" — payloads carry no deltas.
const (
	TopicAppointments  = "changes:appointments"
	TopicPatients      = "changes:patients"
	TopicConversations = "changes:conversations"
)

// Feed broadcasts change notifications over Redis pub/sub. Subscribers
// re-fetch whatever they render; the payload is only the topic name.
type Feed struct {
	client *redis.Client
}

// NewFeed creates a Feed backed by the given Redis client.
func NewFeed(client *redis.Client) (*Feed, error) {
	if client == nil {
		return nil, errors.New("Redis client is not initialized")
	}
	return &Feed{client: client}, nil
}

// Publish emits a reload event on topic. Publish failures are logged and
// swallowed: a missed notification degrades freshness, not correctness.
func (f *Feed) Publish(ctx context.Context, topic string) {
	if err := f.client.Publish(ctx, topic, "reload").Err(); err != nil {
		log.Printf("Failed to publish change event on %s: %v", topic, err)
	}
}

// Subscribe invokes reload for every event on topic until ctx is done.
// The initial subscription handshake is confirmed before returning the
// stop function, so no event published afterwards is missed.
func (f *Feed) Subscribe(ctx context.Context, topic string, reload func()) (func(), error) {
	sub := f.client.Subscribe(ctx, topic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				reload()
			}
		}
	}()

	return func() {
		if err := sub.Close(); err != nil {
			log.Printf("Failed to close subscription on %s: %v", topic, err)
		}
	}, nil
}
