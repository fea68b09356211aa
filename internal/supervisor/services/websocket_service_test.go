// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockContextHub struct {
	runs int
	err  error
}

func (m *mockContextHub) RunWithContext(ctx context.Context) error {
	m.runs++
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubServiceImplementsSutureService(t *testing.T) {
	var _ suture.Service = (*WebSocketHubService)(nil)
}

func TestWebSocketHubServiceDelegates(t *testing.T) {
	hub := &mockContextHub{}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if hub.runs != 1 {
		t.Errorf("expected one RunWithContext call, got %d", hub.runs)
	}
}

func TestWebSocketHubServicePropagatesError(t *testing.T) {
	hub := &mockContextHub{err: errors.New("hub crashed")}
	svc := NewWebSocketHubService(hub)

	if err := svc.Serve(context.Background()); !errors.Is(err, hub.err) {
		t.Errorf("expected hub error to propagate, got %v", err)
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("unexpected name %q", svc.String())
	}
}
