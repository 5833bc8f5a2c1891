// Package eventbus entrega los eventos de traspasos a colaboradores externos.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/events"
)

var (
	_ events.Publisher = (*RedisPublisher)(nil)
	_ events.Publisher = (*LogPublisher)(nil)
)

// RedisPublisher publica cada evento como JSON en un canal Pub/Sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher construye el publisher sobre un cliente ya conectado.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt events.Event) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode evento %s: %w", evt.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// LogPublisher escribe los eventos en el log (sin Redis).
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt events.Event) error {
	p.log.Info().
		Str("event", evt.Type).
		Str("transfer_id", evt.TransferID).
		Str("request_id", evt.RequestID).
		Str("branch_id", evt.BranchID).
		Interface("data", evt.Data).
		Msg("evento")
	return nil
}
