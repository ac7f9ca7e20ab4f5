package messaging

import (
	"context"

	"github.com/feral-file/asset-registry/internal/domain"
)

// EventHandler is called once per received registry event. Returning an error
// nacks the message for redelivery; returning nil acks it.
type EventHandler func(ctx context.Context, event *domain.RegistryEvent) error

// Subscriber defines the interface for consuming registry events from the
// message broker
type Subscriber interface {
	// Subscribe starts delivering events to handler until ctx is cancelled
	Subscribe(ctx context.Context, handler EventHandler) error
	// Close closes the connection and cleans up resources
	Close()
}
