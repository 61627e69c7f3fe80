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

// submissionService implements ports.SubmissionService: the ingestion
// pipeline from raw document to committed row plus queued fan-out.
type submissionService struct {
	formRepo       ports.FormRepository
	submissionRepo ports.SubmissionRepository
	analyticsRepo  ports.AnalyticsRepository
	transactor     ports.DBTransactor
	validator      ports.SchemaValidator
	verifier       ports.ChallengeVerifier
	dispatcher     ports.WebhookDispatcher
	log            zerolog.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	formRepo ports.FormRepository,
	submissionRepo ports.SubmissionRepository,
	analyticsRepo ports.AnalyticsRepository,
	transactor ports.DBTransactor,
	validator ports.SchemaValidator,
	verifier ports.ChallengeVerifier,
	dispatcher ports.WebhookDispatcher,
	log zerolog.Logger,
) ports.SubmissionService {
	return &submissionService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		analyticsRepo:  analyticsRepo,
		transactor:     transactor,
		validator:      validator,
		verifier:       verifier,
		dispatcher:     dispatcher,
		log:            log,
	}
}

// Submit runs the pipeline: resolve form, validate against schema, verify
// the challenge token, persist submission and counter in one transaction,
// then enqueue the fan-out job. A dropped fan-out never fails the request;
// the submission is already committed.
func (s *submissionService) Submit(ctx context.Context, req ports.SubmitRequest) (*domain.Submission, error) {
	form, err := s.formRepo.GetByID(ctx, req.FormID)
	if err != nil {
		return nil, err
	}
	if req.RequirePublished && !form.IsPublished() {
		// Drafts must be indistinguishable from missing forms publicly.
		return nil, apperror.ErrFormNotPublished()
	}

	if err := s.validator.Validate(form.Schema, req.Data); err != nil {
		return nil, apperror.ErrInvalidData(err.Error())
	}

	if s.verifier.Enabled() {
		if req.RecaptchaToken == "" {
			return nil, apperror.ErrRecaptchaMissing()
		}
		if err := s.verifier.Verify(ctx, req.RecaptchaToken, req.IPAddress); err != nil {
			s.log.Warn().Err(err).Str("form_id", form.ID.String()).Msg("challenge verification failed")
			return nil, apperror.ErrRecaptchaFailed()
		}
	}

	data, err := json.Marshal(req.Data)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	submission := &domain.Submission{
		ID:        uuid.New(),
		FormID:    form.ID,
		Data:      data,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.submissionRepo.Create(ctx, tx, submission); err != nil {
		return nil, err
	}
	if err := s.analyticsRepo.IncrementSubmissions(ctx, tx, form.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(err)
	}

	if err := s.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    form.ID,
		EventType: domain.EventSubmissionCreated,
		Data:      submission.Data,
	}); err != nil {
		s.log.Warn().Err(err).
			Str("form_id", form.ID.String()).
			Str("submission_id", submission.ID.String()).
			Msg("fan-out job dropped")
	}

	s.log.Info().
		Str("form_id", form.ID.String()).
		Str("submission_id", submission.ID.String()).
		Msg("submission accepted")

	return submission, nil
}

// Get returns a submission after checking the caller owns its form.
func (s *submissionService) Get(ctx context.Context, id uuid.UUID, actor ports.Actor) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeForm(ctx, submission.FormID, actor); err != nil {
		return nil, err
	}
	return submission, nil
}

// ListByForm returns a form's submissions, owner or admin only.
func (s *submissionService) ListByForm(ctx context.Context, formID uuid.UUID, actor ports.Actor, limit, offset int) ([]domain.Submission, error) {
	if err := s.authorizeForm(ctx, formID, actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.submissionRepo.ListByForm(ctx, formID, limit, offset)
}

func (s *submissionService) authorizeForm(ctx context.Context, formID uuid.UUID, actor ports.Actor) error {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return err
	}
	if !actor.Admin && form.CreatedBy != actor.ID {
		return apperror.ErrNotFormOwner()
	}
	return nil
}
