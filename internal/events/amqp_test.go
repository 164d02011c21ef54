package events_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/events"
)

func TestAMQPPublisher(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set; skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exchange := fmt.Sprintf("fleet.test.%d", time.Now().UnixNano())
	pub, err := events.NewAMQPPublisher(url, exchange)
	require.NoError(t, err)
	defer pub.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "trip.status.*", exchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, sampleEvent()))

	select {
	case d := <-deliveries:
		assert.Equal(t, "trip.status.completed", d.RoutingKey)
		assert.Equal(t, "application/json", d.ContentType)
		var got events.Message
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, "DISPATCHED", got.FromStatus)
	case <-ctx.Done():
		t.Fatal("timed out waiting for delivery")
	}

	_ = ch.ExchangeDelete(exchange, false, false)
}
