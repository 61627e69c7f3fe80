package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// formService implements ports.FormService.
type formService struct {
	formRepo      ports.FormRepository
	analyticsRepo ports.AnalyticsRepository
	dispatcher    ports.WebhookDispatcher
	log           zerolog.Logger
}

// NewFormService creates a new form service.
func NewFormService(
	formRepo ports.FormRepository,
	analyticsRepo ports.AnalyticsRepository,
	dispatcher ports.WebhookDispatcher,
	log zerolog.Logger,
) ports.FormService {
	return &formService{
		formRepo:      formRepo,
		analyticsRepo: analyticsRepo,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// Create stores a new draft form and seeds its analytics counters.
func (s *formService) Create(ctx context.Context, ownerID uuid.UUID, params ports.CreateFormParams) (*domain.Form, error) {
	schema := params.Schema
	if len(schema) == 0 {
		schema = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	form := &domain.Form{
		ID:          uuid.New(),
		Title:       params.Title,
		Description: params.Description,
		Schema:      schema,
		Version:     1,
		Status:      domain.FormStatusDraft,
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, err
	}

	if err := s.analyticsRepo.Create(ctx, &domain.FormAnalytics{FormID: form.ID, LastUpdated: now}); err != nil {
		// Counter upserts tolerate a missing row; creation is best effort.
		s.log.Warn().Err(err).Str("form_id", form.ID.String()).Msg("failed to seed analytics row")
	}

	s.log.Info().Str("form_id", form.ID.String()).Str("owner_id", ownerID.String()).Msg("form created")
	return form, nil
}

// Get returns a form, owner or admin only.
func (s *formService) Get(ctx context.Context, id uuid.UUID, actor ports.Actor) (*domain.Form, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && form.CreatedBy != actor.ID {
		return nil, apperror.ErrNotFormOwner()
	}
	return form, nil
}

// ListByOwner returns the caller's forms.
func (s *formService) ListByOwner(ctx context.Context, actor ports.Actor) ([]domain.Form, error) {
	return s.formRepo.ListByOwner(ctx, actor.ID)
}

// Publish transitions a form to published and emits a form.published event.
// Publishing an already published form is a no-op.
func (s *formService) Publish(ctx context.Context, id uuid.UUID, actor ports.Actor) (*domain.Form, error) {
	form, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if form.IsPublished() {
		return form, nil
	}

	now := time.Now().UTC()
	if err := s.formRepo.Publish(ctx, id, now); err != nil {
		return nil, err
	}

	form.Status = domain.FormStatusPublished
	form.PublishedAt = &now
	form.UpdatedAt = now
	form.Version++

	if err := s.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    form.ID,
		EventType: domain.EventFormPublished,
	}); err != nil {
		s.log.Warn().Err(err).Str("form_id", form.ID.String()).Msg("form.published fan-out dropped")
	}

	s.log.Info().Str("form_id", form.ID.String()).Msg("form published")
	return form, nil
}

// GetPublished is the anonymous public read. Drafts and archived forms are
// reported as not found.
func (s *formService) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished() {
		return nil, apperror.ErrFormNotPublished()
	}
	return form, nil
}

// TrackView bumps the form's view counter.
func (s *formService) TrackView(ctx context.Context, formID uuid.UUID) error {
	return s.analyticsRepo.IncrementViews(ctx, formID)
}

// Analytics returns the form's counters, owner or admin only.
func (s *formService) Analytics(ctx context.Context, formID uuid.UUID, actor ports.Actor) (*domain.FormAnalytics, error) {
	if _, err := s.Get(ctx, formID, actor); err != nil {
		return nil, err
	}
	return s.analyticsRepo.GetByForm(ctx, formID)
}
