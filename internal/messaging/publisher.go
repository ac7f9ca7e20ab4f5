package messaging

import (
	"context"

	"github.com/feral-file/asset-registry/internal/domain"
)

// Publisher defines the interface for publishing registry events to the
// message broker
type Publisher interface {
	// PublishEvent publishes a registry event to the message broker
	PublishEvent(ctx context.Context, event *domain.RegistryEvent) error
	// Close closes the connection
	Close()
}
