package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	// deliveryTimeout bounds one delivery attempt end to end.
	deliveryTimeout = 10 * time.Second
	// maxLoggedBody caps the stored response body per attempt.
	maxLoggedBody = 500
	// signatureHeader carries the HMAC over the exact request body bytes.
	signatureHeader = "X-Webhook-Signature"
)

// ErrQueueFull is returned by Enqueue when the fan-out queue is saturated.
// The event is dropped; the submission itself is already committed.
var ErrQueueFull = errors.New("webhook dispatch queue full")

// deliveryPayload is the JSON document POSTed to subscriber endpoints.
// Field order is fixed so the marshaled bytes are deterministic; the
// signature covers exactly these bytes.
type deliveryPayload struct {
	Event     string          `json:"event"`
	FormID    string          `json:"form_id"`
	FormTitle string          `json:"form_title"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// WebhookDispatcher implements ports.WebhookDispatcher with a bounded queue
// and a fixed worker pool. Each queued job fans out to every active
// subscription of the form that subscribes to the event; deliveries within
// a job run concurrently. Delivery is at-most-once: one HTTP attempt, one
// log row, no retries.
type WebhookDispatcher struct {
	formRepo    ports.FormRepository
	webhookRepo ports.WebhookRepository
	logRepo     ports.WebhookLogRepository
	encSvc      ports.EncryptionService
	sigSvc      ports.SignatureService
	client      HTTPClient
	log         zerolog.Logger

	jobs    chan ports.FanoutJob
	workers int
	wg      sync.WaitGroup
}

// NewWebhookDispatcher creates a dispatcher with the given worker count and
// queue capacity. Call Start before enqueueing and Stop on shutdown.
func NewWebhookDispatcher(
	formRepo ports.FormRepository,
	webhookRepo ports.WebhookRepository,
	logRepo ports.WebhookLogRepository,
	encSvc ports.EncryptionService,
	sigSvc ports.SignatureService,
	client HTTPClient,
	workers int,
	queueSize int,
	log zerolog.Logger,
) *WebhookDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &WebhookDispatcher{
		formRepo:    formRepo,
		webhookRepo: webhookRepo,
		logRepo:     logRepo,
		encSvc:      encSvc,
		sigSvc:      sigSvc,
		client:      client,
		log:         log,
		jobs:        make(chan ports.FanoutJob, queueSize),
		workers:     workers,
	}
}

// Start launches the worker pool.
func (d *WebhookDispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.log.Info().Int("workers", d.workers).Int("queue_size", cap(d.jobs)).Msg("webhook dispatcher started")
}

// Stop closes the queue and waits for in-flight jobs to drain. Enqueue must
// not be called after Stop.
func (d *WebhookDispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
	d.log.Info().Msg("webhook dispatcher stopped")
}

// Enqueue hands a job to the pool without blocking. A full queue drops the
// event rather than stalling the submission path.
func (d *WebhookDispatcher) Enqueue(job ports.FanoutJob) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		d.log.Warn().
			Str("form_id", job.FormID.String()).
			Str("event", job.EventType).
			Msg("webhook queue full, dropping event")
		return ErrQueueFull
	}
}

func (d *WebhookDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.fanout(context.Background(), job)
	}
}

// fanout delivers one event to every matching subscription of the form.
func (d *WebhookDispatcher) fanout(ctx context.Context, job ports.FanoutJob) {
	form, err := d.formRepo.GetByID(ctx, job.FormID)
	if err != nil {
		// Form deleted between commit and dispatch; nothing to deliver.
		d.log.Debug().Err(err).Str("form_id", job.FormID.String()).Msg("fan-out skipped, form unavailable")
		return
	}

	hooks, err := d.webhookRepo.ListActiveByForm(ctx, job.FormID)
	if err != nil {
		d.log.Error().Err(err).Str("form_id", job.FormID.String()).Msg("fan-out failed to list webhooks")
		return
	}

	var wg sync.WaitGroup
	for i := range hooks {
		hook := hooks[i]
		if !hook.SubscribesTo(job.EventType) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := json.Marshal(deliveryPayload{
				Event:     job.EventType,
				FormID:    form.ID.String(),
				FormTitle: form.Title,
				Data:      job.Data,
				Timestamp: hook.CreatedAt.UTC().Format(time.RFC3339),
			})
			if err != nil {
				d.log.Error().Err(err).Str("webhook_id", hook.ID.String()).Msg("failed to marshal delivery payload")
				return
			}
			d.deliver(ctx, &hook, job.EventType, body)
		}()
	}
	wg.Wait()
}

// SendTest performs one synchronous delivery with event type "test". The
// attempt follows the production signing and logging contract; the payload
// carries no data document.
func (d *WebhookDispatcher) SendTest(ctx context.Context, webhook *domain.Webhook) (*ports.TestDeliveryResult, error) {
	form, err := d.formRepo.GetByID(ctx, webhook.FormID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(deliveryPayload{
		Event:     domain.EventTest,
		FormID:    form.ID.String(),
		FormTitle: form.Title,
		Timestamp: webhook.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	return d.deliver(ctx, webhook, domain.EventTest, body), nil
}

// deliver performs exactly one HTTP attempt and writes exactly one log row,
// whatever the outcome.
func (d *WebhookDispatcher) deliver(ctx context.Context, webhook *domain.Webhook, eventType string, body []byte) *ports.TestDeliveryResult {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	result := &ports.TestDeliveryResult{}
	entry := &domain.WebhookLog{
		WebhookID: webhook.ID,
		EventType: eventType,
		CreatedAt: time.Now().UTC(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		entry.ResponseBody = truncateBody(err.Error())
	} else {
		req.Header.Set("Content-Type", "application/json")
		if webhook.SecretEnc != "" {
			secret, err := d.encSvc.Decrypt(webhook.SecretEnc)
			if err != nil {
				d.log.Error().Err(err).Str("webhook_id", webhook.ID.String()).Msg("failed to decrypt webhook secret")
				entry.ResponseBody = truncateBody("signing secret unavailable")
				d.record(entry)
				result.ResponseBody = entry.ResponseBody
				return result
			}
			req.Header.Set(signatureHeader, "sha256="+d.sigSvc.Sign(secret, body))
		}

		resp, err := d.client.Do(req)
		if err != nil {
			entry.ResponseBody = truncateBody(err.Error())
		} else {
			code := resp.StatusCode
			entry.ResponseCode = &code
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
			resp.Body.Close()
			entry.ResponseBody = string(respBody)
		}
	}

	d.record(entry)

	result.ResponseCode = entry.ResponseCode
	result.ResponseBody = entry.ResponseBody

	if entry.ResponseCode != nil {
		d.log.Info().
			Str("webhook_id", webhook.ID.String()).
			Str("event", eventType).
			Int("status", *entry.ResponseCode).
			Msg("webhook delivered")
	} else {
		d.log.Warn().
			Str("webhook_id", webhook.ID.String()).
			Str("event", eventType).
			Str("error", entry.ResponseBody).
			Msg("webhook delivery failed")
	}

	return result
}

// record persists the log row detached from the request context so a
// caller timeout cannot lose the attempt record.
func (d *WebhookDispatcher) record(entry *domain.WebhookLog) {
	if err := d.logRepo.Create(context.Background(), entry); err != nil {
		d.log.Error().Err(err).Str("webhook_id", entry.WebhookID.String()).Msg("failed to persist webhook log")
	}
}

func truncateBody(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody]
	}
	return s
}
