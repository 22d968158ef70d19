// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventKind identifies a session transition.
type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

// Event describes a login or logout.
type Event struct {
	Kind   EventKind `json:"kind"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

// subscriberBuffer is the per-subscriber queue length. Events beyond it are dropped.
const subscriberBuffer = 8

// Notifier fans session events out to subscribers. With a Redis client
// attached, published events travel through a pub/sub channel so that
// subscribers on every instance receive them.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}

	rdb     *redis.Client
	channel string
	ready   chan struct{}
}

// NewNotifier returns an in-process notifier.
func NewNotifier() *Notifier {
	n := &Notifier{
		subs:  make(map[chan Event]struct{}),
		ready: make(chan struct{}),
	}
	close(n.ready)
	return n
}

// NewRedisNotifier returns a notifier relaying through channel on rdb.
// Run must be started for subscribers to receive anything.
func NewRedisNotifier(rdb *redis.Client, channel string) *Notifier {
	return &Notifier{
		subs:    make(map[chan Event]struct{}),
		rdb:     rdb,
		channel: channel,
		ready:   make(chan struct{}),
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// Ready is closed once the notifier can deliver published events.
func (n *Notifier) Ready() <-chan struct{} {
	return n.ready
}

// Subscribe registers a subscriber. The returned function unregisters it
// and closes the channel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			n.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to all subscribers, through Redis when configured.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if n.rdb == nil {
		n.broadcast(ev)
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding session event: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing session event: %w", err)
	}
	return nil
}

// Run relays events from Redis to local subscribers until ctx is cancelled.
// Without Redis it just waits for ctx.
func (n *Notifier) Run(ctx context.Context) error {
	if n.rdb == nil {
		<-ctx.Done()
		return nil
	}

	ps := n.rdb.Subscribe(ctx, n.channel)
	defer func() { _ = ps.Close() }()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", n.channel, err)
	}
	close(n.ready)

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("dropping malformed session event", "error", err, "category", "system")
				continue
			}
			n.broadcast(ev)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func (n *Notifier) broadcast(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- ev:
		default:
			slog.Debug("session event dropped for slow subscriber", "kind", ev.Kind)
		}
	}
}
