package jetstream

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/asset-registry/internal/adapter"
	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/logger"
	"github.com/feral-file/asset-registry/internal/messaging"
)

type subscriber struct {
	nc   adapter.NatsConn
	js   adapter.JetStream
	cfg  Config
	json adapter.JSON
}

// NewSubscriber creates a new NATS JetStream subscriber with a durable pull
// consumer bound to the event stream
func NewSubscriber(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Subscriber, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		nc:   nc,
		js:   js,
		cfg:  cfg,
		json: jsonAdapter,
	}, nil
}

// Subscribe consumes registry events until ctx is cancelled. Messages whose
// handler returns an error are nacked for redelivery; undecodable messages
// are terminated since redelivery cannot fix them.
func (s *subscriber) Subscribe(ctx context.Context, handler messaging.EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		FilterSubject: SubjectPrefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.cfg.AckWait,
		MaxDeliver:    s.cfg.MaxDeliver,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %q: %w", s.cfg.ConsumerName, err)
	}

	consumeCtx, err := consumer.Consume(func(msg adapter.Message) {
		s.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	select {
	case <-ctx.Done():
		consumeCtx.Drain()
		return ctx.Err()
	case <-consumeCtx.Closed():
		return nil
	}
}

func (s *subscriber) handleMessage(ctx context.Context, msg adapter.Message, handler messaging.EventHandler) {
	var event domain.RegistryEvent
	if err := s.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to decode registry event, terminating"))
		_ = msg.Term()
		return
	}

	if err := handler(ctx, &event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("event_id", event.EventID),
			zap.String("event_type", string(event.EventType)))
		_ = msg.Nak()
		return
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("event_id", event.EventID))
	}
}

// Close closes the NATS connection
func (s *subscriber) Close() {
	if s.nc == nil {
		return
	}

	s.nc.Close()
}
