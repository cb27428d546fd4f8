package event

import (
	"context"
	"fmt"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
)

// EventBus carries domain events (e.g. payment.succeeded) to downstream
// consumers such as entitlement or email workers.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Subscribe(ctx context.Context, topic string, handler func(payload any)) error
	Close() error
}

// NewInProcEventBus returns a new in-memory event bus. Used when event config driver=="memory" or omitted.
func NewInProcEventBus() *WatermillEventBus {
	return NewWatermillInMemBus()
}

// NewEventBusFromConfig returns an EventBus based on config. Supported: memory (default), nats.
func NewEventBusFromConfig(cfg *config.EventConfig) (EventBus, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.EventDriverMemory {
		return NewWatermillInMemBus(), nil
	}
	switch cfg.Driver {
	case constants.EventDriverNATS:
		if cfg.URL == "" || cfg.ClusterID == "" {
			return nil, fmt.Errorf("NATS driver requires url and cluster_id")
		}
		clientID := cfg.ClientID
		if clientID == "" {
			clientID = constants.ServiceName
		}
		return NewWatermillNATSBus(cfg.ClusterID, clientID, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported event bus driver: %s", cfg.Driver)
	}
}
