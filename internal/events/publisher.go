// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package events mirrors accepted vehicle updates onto NATS so external
// consumers (dispatch boards, analytics) can follow the fleet without
// holding a websocket to this process. Publishing is fire-and-forget
// over core NATS: observers that need replay or durability are out of
// scope, so no JetStream stream is provisioned.
package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fleetglass/fleetglass/internal/config"
	"github.com/fleetglass/fleetglass/internal/logging"
	"github.com/fleetglass/fleetglass/internal/metrics"
	"github.com/fleetglass/fleetglass/internal/models"
)

// breakerName identifies the publish breaker in logs and metrics
const breakerName = "nats-publisher"

// natsConn is the slice of *nats.Conn the publisher uses, extracted for
// testability.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// Publisher sends vehicle_update events to NATS with circuit breaker
// protection. A tripped breaker sheds publishes instead of stalling the
// ingestion path.
type Publisher struct {
	conn          natsConn
	breaker       *gobreaker.CircuitBreaker[interface{}]
	subjectPrefix string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects to NATS and returns a publisher. The connection
// retries in the background on failure, so a broker outage at startup
// does not abort the process.
func NewPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("fleetglass-publisher"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logging.Error().Err(err).Msg("NATS async error")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	return newPublisher(conn, cfg.SubjectPrefix), nil
}

// newPublisher wires the breaker around an existing connection
func newPublisher(conn natsConn, subjectPrefix string) *Publisher {
	settings := gobreaker.Settings{
		Name: breakerName,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Publisher{
		conn:          conn,
		breaker:       gobreaker.NewCircuitBreaker[interface{}](settings),
		subjectPrefix: subjectPrefix,
	}
}

// breakerStateValue maps gobreaker states onto the metric encoding
// (0=closed, 1=half-open, 2=open).
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// SubjectFor returns the per-vehicle publish subject,
// e.g. "telemetry.vehicle_update.42".
func (p *Publisher) SubjectFor(vehicleID int64) string {
	return p.subjectPrefix + ".vehicle_update." + strconv.FormatInt(vehicleID, 10)
}

// PublishVehicleUpdate sends one post-update live state to NATS.
// Implements tracking.Publisher.
func (p *Publisher) PublishVehicleUpdate(ctx context.Context, state *models.LiveState) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal vehicle update: %w", err)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.conn.Publish(p.SubjectFor(state.ID), payload)
	})
	metrics.RecordNATSPublish(err)
	if err != nil {
		return fmt.Errorf("publish vehicle update: %w", err)
	}
	return nil
}

// Close drains the connection so queued publishes flush before shutdown
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
