package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/awantoch/formrelay/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	assert.NoError(t, bus.Publish(context.Background(), "topic", "message"))
}

func TestEventBus_RoundTrip(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		mu       sync.Mutex
		received []any
		wg       sync.WaitGroup
	)
	wg.Add(2)
	require.NoError(t, bus.Subscribe(ctx, "test-topic", func(payload any) {
		mu.Lock()
		received = append(received, payload)
		mu.Unlock()
		wg.Done()
	}))

	require.NoError(t, bus.Publish(ctx, "test-topic", "hello world"))
	require.NoError(t, bus.Publish(ctx, "test-topic", map[string]any{"payment_id": "p1"}))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	// gochannel does not order deliveries across publishes
	assert.ElementsMatch(t, []any{"hello world", map[string]any{"payment_id": "p1"}}, received)
}

func TestNewEventBusFromConfig_Memory(t *testing.T) {
	bus, err := NewEventBusFromConfig(&config.EventConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, bus)

	bus, err = NewEventBusFromConfig(nil)
	require.NoError(t, err)
	assert.NotNil(t, bus)
}

func TestNewEventBusFromConfig_NATSRequiresURL(t *testing.T) {
	_, err := NewEventBusFromConfig(&config.EventConfig{Driver: "nats"})
	assert.Error(t, err)
}

func TestNewEventBusFromConfig_Unknown(t *testing.T) {
	_, err := NewEventBusFromConfig(&config.EventConfig{Driver: "unknown"})
	assert.Error(t, err)
}
