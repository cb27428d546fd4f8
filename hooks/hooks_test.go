package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/awantoch/formrelay/event"
	"github.com/awantoch/formrelay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	event.EventBus
	topic   string
	payload any
}

func (b *recordingBus) Publish(_ context.Context, topic string, payload any) error {
	b.topic = topic
	b.payload = payload
	return nil
}

func TestEventHook_Publishes(t *testing.T) {
	bus := &recordingBus{}
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h := NewEventHook(bus)
	h.Now = func() time.Time { return at }

	rec := model.PaymentRecord{"payment_id": "p1", "payment_status": "finished", "pay_amount": "10", "pay_currency": "usd"}
	require.NoError(t, h.PaymentSucceeded(context.Background(), rec, "a@b.c"))

	assert.Equal(t, "payment.succeeded", bus.topic)
	assert.Equal(t, PaymentSucceededEvent{
		PaymentID:   "p1",
		Status:      "finished",
		Amount:      "10",
		Currency:    "usd",
		Email:       "a@b.c",
		SucceededAt: at,
	}, bus.payload)
}

func TestEventHook_InMemoryBusDelivers(t *testing.T) {
	bus := event.NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan any, 1)
	require.NoError(t, bus.Subscribe(ctx, "payment.succeeded", func(p any) { got <- p }))
	require.NoError(t, NewEventHook(bus).PaymentSucceeded(ctx, model.PaymentRecord{"payment_id": "p9"}, ""))

	select {
	case p := <-got:
		m, ok := p.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "p9", m["payment_id"])
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestChain_RunsAllAndJoinsErrors(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	c := Chain{
		Func(func(context.Context, model.PaymentRecord, string) error { calls++; return boom }),
		nil,
		LogHook{},
		Func(func(context.Context, model.PaymentRecord, string) error { calls++; return nil }),
	}
	err := c.PaymentSucceeded(context.Background(), model.PaymentRecord{"payment_id": "p1"}, "a@b.c")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
