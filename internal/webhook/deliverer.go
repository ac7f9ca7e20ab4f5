package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/logger"
	"github.com/feral-file/asset-registry/internal/store"
	"github.com/feral-file/asset-registry/internal/store/schema"
)

// maxResponseBody caps how much of a webhook endpoint's response is read and
// persisted. 4KB is enough for diagnostics without risking memory exhaustion.
const maxResponseBody = 4 * 1024

// Config holds webhook delivery tuning
type Config struct {
	HTTPTimeout    time.Duration
	PoolSize       int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Deliverer fans a registry event out to every subscribed webhook client. Each
// client delivery runs on a bounded worker pool with exponential-backoff
// retries and is recorded as a webhook_deliveries row.
type Deliverer struct {
	store      store.Store
	httpClient *http.Client
	pool       pond.Pool
	cfg        Config
}

// NewDeliverer creates a webhook deliverer with its worker pool
func NewDeliverer(s store.Store, cfg Config) *Deliverer {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 50
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}

	return &Deliverer{
		store:      s,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		pool:       pond.NewPool(cfg.PoolSize),
		cfg:        cfg,
	}
}

// Dispatch delivers an event to every active client subscribed to its type.
// It blocks until all client deliveries for this event have finished, so the
// caller can ack the broker message knowing the fan-out completed.
func (d *Deliverer) Dispatch(ctx context.Context, event *domain.RegistryEvent) error {
	clients, err := d.store.ListWebhookClientsForEvent(ctx, string(event.EventType))
	if err != nil {
		return fmt.Errorf("failed to list webhook clients: %w", err)
	}

	if len(clients) == 0 {
		logger.DebugCtx(ctx, "No webhook clients for event type",
			zap.String("event_type", string(event.EventType)))
		return nil
	}

	group := d.pool.NewGroup()
	for _, client := range clients {
		group.SubmitErr(func() error {
			d.deliverToClient(ctx, client, event)
			return nil
		})
	}

	return group.Wait()
}

// deliverToClient performs the delivery to a single client, retrying transient
// failures, and records the outcome. Failures never propagate: the delivery
// row is the durable record of what happened.
func (d *Deliverer) deliverToClient(ctx context.Context, client schema.WebhookClient, event *domain.RegistryEvent) {
	delivery := &schema.WebhookDelivery{
		ClientID:       client.ClientID,
		EventID:        event.EventID,
		EventType:      string(event.EventType),
		DeliveryStatus: schema.WebhookDeliveryStatusPending,
	}
	payloadJSON, _, _, err := GenerateSignedPayload(client.WebhookSecret, event)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("client_id", client.ClientID))
		return
	}
	delivery.Payload = datatypes.JSON(payloadJSON)

	if err := d.store.CreateWebhookDelivery(ctx, delivery); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("client_id", client.ClientID))
		return
	}

	var result DeliveryResult
	operation := func() error {
		delivery.Attempts++
		now := time.Now()
		delivery.LastAttemptAt = &now

		result = d.attempt(ctx, &client, event)
		if result.Success {
			return nil
		}

		// 4xx responses are the client's misconfiguration, retrying won't help
		if result.StatusCode >= 400 && result.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("HTTP %d", result.StatusCode))
		}
		if result.StatusCode != 0 {
			return fmt.Errorf("HTTP %d", result.StatusCode)
		}
		return fmt.Errorf("delivery failed: %s", result.Error)
	}

	b := backoff.NewExponentialBackOff()
	if d.cfg.InitialBackoff > 0 {
		b.InitialInterval = d.cfg.InitialBackoff
	}
	if d.cfg.MaxBackoff > 0 {
		b.MaxInterval = d.cfg.MaxBackoff
	}
	b.MaxElapsedTime = 0 // bounded by MaxRetries, not wall time

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(d.cfg.MaxRetries, 0))), ctx)) //nolint:gosec,G115

	delivery.DeliveryStatus = schema.WebhookDeliveryStatusSuccess
	if err != nil {
		delivery.DeliveryStatus = schema.WebhookDeliveryStatusFailed
		delivery.ErrorMessage = err.Error()
	}
	if result.StatusCode != 0 {
		delivery.ResponseStatus = &result.StatusCode
	}
	delivery.ResponseBody = result.Body

	if uerr := d.store.UpdateWebhookDelivery(ctx, delivery); uerr != nil {
		logger.ErrorCtx(ctx, uerr,
			zap.String("client_id", client.ClientID),
			zap.String("event_id", event.EventID))
	}

	if err != nil {
		logger.WarnCtx(ctx, "Webhook delivery failed",
			zap.String("client_id", client.ClientID),
			zap.String("event_id", event.EventID),
			zap.Int("attempts", delivery.Attempts),
			zap.Error(err))
		return
	}

	logger.InfoCtx(ctx, "Webhook delivered",
		zap.String("client_id", client.ClientID),
		zap.String("event_id", event.EventID),
		zap.Int("status_code", result.StatusCode))
}

// attempt performs one signed HTTP POST to the client's endpoint
func (d *Deliverer) attempt(ctx context.Context, client *schema.WebhookClient, event *domain.RegistryEvent) DeliveryResult {
	payload, signature, timestamp, err := GenerateSignedPayload(client.WebhookSecret, event)
	if err != nil {
		return DeliveryResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return DeliveryResult{Success: false, Error: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event-ID", event.EventID)
	req.Header.Set("X-Webhook-Event-Type", string(event.EventType))
	req.Header.Set("X-Webhook-Timestamp", fmt.Sprintf("%d", timestamp))
	req.Header.Set("User-Agent", "Asset-Registry-Webhook/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return DeliveryResult{Success: false, Error: err.Error()}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.WarnCtx(ctx, "failed to close response body",
				zap.Error(cerr), zap.String("url", client.WebhookURL))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		// Keep the delivery outcome, just without the body
		respBody = []byte{}
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	return DeliveryResult{
		Success:    success,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}
}

// Close drains the worker pool, waiting for in-flight deliveries
func (d *Deliverer) Close() {
	d.pool.StopAndWait()
}
