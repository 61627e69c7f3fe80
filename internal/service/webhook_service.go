package service

import (
	"context"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// knownEvents is the set of subscribable event types.
var knownEvents = map[string]bool{
	domain.EventSubmissionCreated: true,
	domain.EventFormPublished:     true,
}

// webhookService implements ports.WebhookService: subscription management
// on top of the dispatcher.
type webhookService struct {
	webhookRepo ports.WebhookRepository
	formRepo    ports.FormRepository
	logRepo     ports.WebhookLogRepository
	encSvc      ports.EncryptionService
	dispatcher  ports.WebhookDispatcher
	log         zerolog.Logger
}

// NewWebhookService creates a new webhook management service.
func NewWebhookService(
	webhookRepo ports.WebhookRepository,
	formRepo ports.FormRepository,
	logRepo ports.WebhookLogRepository,
	encSvc ports.EncryptionService,
	dispatcher ports.WebhookDispatcher,
	log zerolog.Logger,
) ports.WebhookService {
	return &webhookService{
		webhookRepo: webhookRepo,
		formRepo:    formRepo,
		logRepo:     logRepo,
		encSvc:      encSvc,
		dispatcher:  dispatcher,
		log:         log,
	}
}

// Create registers a subscription on a form the caller owns. An empty
// events list defaults to submission.created; the signing secret, when
// given, is encrypted before it touches storage.
func (s *webhookService) Create(ctx context.Context, actor ports.Actor, params ports.CreateWebhookParams) (*domain.Webhook, error) {
	if err := s.authorizeForm(ctx, params.FormID, actor); err != nil {
		return nil, err
	}

	events := params.Events
	if len(events) == 0 {
		events = []string{domain.EventSubmissionCreated}
	}
	for _, e := range events {
		if !knownEvents[e] {
			return nil, apperror.Validation("unknown event type: " + e)
		}
	}

	var secretEnc string
	if params.Secret != "" {
		enc, err := s.encSvc.Encrypt(params.Secret)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(err)
		}
		secretEnc = enc
	}

	now := time.Now().UTC()
	webhook := &domain.Webhook{
		ID:        uuid.New(),
		FormID:    params.FormID,
		Name:      params.Name,
		URL:       params.URL,
		SecretEnc: secretEnc,
		Events:    events,
		IsActive:  true,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("webhook_id", webhook.ID.String()).
		Str("form_id", params.FormID.String()).
		Strs("events", events).
		Msg("webhook created")
	return webhook, nil
}

// ListByForm returns a form's subscriptions, owner or admin only.
func (s *webhookService) ListByForm(ctx context.Context, formID uuid.UUID, actor ports.Actor) ([]domain.Webhook, error) {
	if err := s.authorizeForm(ctx, formID, actor); err != nil {
		return nil, err
	}
	return s.webhookRepo.ListByForm(ctx, formID)
}

// Delete removes a subscription. Its delivery logs remain.
func (s *webhookService) Delete(ctx context.Context, id uuid.UUID, actor ports.Actor) error {
	webhook, err := s.authorizeWebhook(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.webhookRepo.Delete(ctx, webhook.ID); err != nil {
		return err
	}
	s.log.Info().Str("webhook_id", id.String()).Msg("webhook deleted")
	return nil
}

// Test sends a synchronous test delivery and returns the outcome.
func (s *webhookService) Test(ctx context.Context, id uuid.UUID, actor ports.Actor) (*ports.TestDeliveryResult, error) {
	webhook, err := s.authorizeWebhook(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.SendTest(ctx, webhook)
}

// Logs returns delivery history, newest-first.
func (s *webhookService) Logs(ctx context.Context, id uuid.UUID, actor ports.Actor, limit int) ([]domain.WebhookLog, error) {
	webhook, err := s.authorizeWebhook(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.logRepo.ListByWebhook(ctx, webhook.ID, limit)
}

func (s *webhookService) authorizeForm(ctx context.Context, formID uuid.UUID, actor ports.Actor) error {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return err
	}
	if !actor.Admin && form.CreatedBy != actor.ID {
		return apperror.ErrNotFormOwner()
	}
	return nil
}

func (s *webhookService) authorizeWebhook(ctx context.Context, id uuid.UUID, actor ports.Actor) (*domain.Webhook, error) {
	webhook, err := s.webhookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeForm(ctx, webhook.FormID, actor); err != nil {
		return nil, err
	}
	return webhook, nil
}
