package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/awantoch/formrelay/logger"
	stan "github.com/nats-io/stan.go"
)

// MetadataRequestID is the message metadata key carrying the request ID.
const MetadataRequestID = "request_id"

// WatermillEventBus satisfies our EventBus interface using Watermill.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

var _ EventBus = (*WatermillEventBus)(nil)

// NewWatermillInMemBus returns a Watermill-based, in-memory bus.
func NewWatermillInMemBus() *WatermillEventBus {
	wlog := watermill.NewStdLogger(false, false)
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 100}, wlog)
	return &WatermillEventBus{publisher: ps, subscriber: ps}
}

// NewWatermillNATSBus returns a NATS Streaming backed bus.
func NewWatermillNATSBus(clusterID, clientID, url string) (*WatermillEventBus, error) {
	wlog := watermill.NewStdLogger(false, false)
	pub, err := nats.NewStreamingPublisher(nats.StreamingPublisherConfig{
		ClusterID: clusterID,
		ClientID:  clientID + "-pub",
		StanOptions: []stan.Option{
			stan.NatsURL(url),
		},
		Marshaler: nats.GobMarshaler{},
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("nats publisher: %w", err)
	}
	sub, err := nats.NewStreamingSubscriber(nats.StreamingSubscriberConfig{
		ClusterID: clusterID,
		ClientID:  clientID + "-sub",
		StanOptions: []stan.Option{
			stan.NatsURL(url),
		},
		Unmarshaler:    nats.GobMarshaler{},
		CloseTimeout:   30 * time.Second,
		AckWaitTimeout: 30 * time.Second,
	}, wlog)
	if err != nil {
		pub.Close()
		return nil, fmt.Errorf("nats subscriber: %w", err)
	}
	return &WatermillEventBus{publisher: pub, subscriber: sub}, nil
}

// Publish encodes payload (bytes and strings verbatim, anything else as JSON)
// and publishes it on topic.
func (b *WatermillEventBus) Publish(ctx context.Context, topic string, payload any) error {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if reqID, ok := logger.RequestIDFromContext(ctx); ok {
		msg.Metadata.Set(MetadataRequestID, reqID)
	}
	return b.publisher.Publish(topic, msg)
}

// Subscribe delivers payloads on topic to handler until ctx is done. JSON
// objects arrive as map[string]any, anything else as string.
func (b *WatermillEventBus) Subscribe(ctx context.Context, topic string, handler func(payload any)) error {
	ch, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range ch {
			var m map[string]any
			if err := json.Unmarshal(msg.Payload, &m); err == nil && m != nil {
				handler(m)
			} else {
				handler(string(msg.Payload))
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *WatermillEventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return err
	}
	if any(b.subscriber) != any(b.publisher) {
		return b.subscriber.Close()
	}
	return nil
}
