package eventbus_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/application/events"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/cache"
	"github.com/jhoicas/Traspasos-api/internal/infrastructure/eventbus"
)

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := eventbus.NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), events.Event{Type: events.TransferReceived, TransferID: "t-1"}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "transfer.received", line["event"])
	assert.Equal(t, "t-1", line["transfer_id"])
}

// Requiere un Redis real: REDIS_TEST_URL=redis://localhost:6379/15
func TestRedisPublisher(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cache.NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	sub := client.Subscribe(ctx, "traspasos.test")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	p := eventbus.NewRedisPublisher(client, "traspasos.test")
	require.NoError(t, p.Publish(ctx, events.Event{Type: events.RequestCreated, RequestID: "r-1"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var evt events.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
	assert.Equal(t, "r-1", evt.RequestID)
	assert.False(t, evt.OccurredAt.IsZero())
}
