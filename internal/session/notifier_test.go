// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func TestNotifier_LocalFanOut(t *testing.T) {
	n := NewNotifier()

	a, cancelA := n.Subscribe()
	defer cancelA()
	b, cancelB := n.Subscribe()
	defer cancelB()

	require.NoError(t, n.Publish(context.Background(), Event{Kind: EventLogout, UserID: "7"}))

	for _, ch := range []<-chan Event{a, b} {
		ev := receive(t, ch)
		assert.Equal(t, EventLogout, ev.Kind)
		assert.Equal(t, "7", ev.UserID)
		assert.False(t, ev.At.IsZero())
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier()

	ch, cancel := n.Subscribe()
	assert.Equal(t, 1, n.SubscriberCount())

	cancel()
	cancel()
	assert.Equal(t, 0, n.SubscriberCount())

	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")

	require.NoError(t, n.Publish(context.Background(), Event{Kind: EventLogin}))
}

func TestNotifier_SlowSubscriberDoesNotBlock(t *testing.T) {
	n := NewNotifier()

	_, cancel := n.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			_ = n.Publish(context.Background(), Event{Kind: EventLogin})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestNotifier_RunWithoutRedis(t *testing.T) {
	n := NewNotifier()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- n.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNotifier_RedisRelay(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := NewRedisClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer func() { _ = rdb.Close() }()

	n := NewRedisNotifier(rdb, "academy:sessions")
	go func() { _ = n.Run(ctx) }()

	select {
	case <-n.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("relay never became ready")
	}

	ch, unsubscribe := n.Subscribe()
	defer unsubscribe()

	// A second instance publishing on the same channel.
	other := NewRedisNotifier(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "academy:sessions")
	require.NoError(t, other.Publish(ctx, Event{Kind: EventLogin, UserID: "42"}))

	ev := receive(t, ch)
	assert.Equal(t, EventLogin, ev.Kind)
	assert.Equal(t, "42", ev.UserID)
}

func TestNewRedisClient_Errors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisClient(context.Background(), "not-a-url://")
	assert.Error(t, err)
}
