package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dispatcherFixture struct {
	formRepo    *mocks.MockFormRepository
	webhookRepo *mocks.MockWebhookRepository
	logRepo     *mocks.MockWebhookLogRepository
	encSvc      *AESEncryptionService
	dispatcher  *WebhookDispatcher

	mu      sync.Mutex
	entries []domain.WebhookLog
}

func newDispatcherFixture(t *testing.T, ctrl *gomock.Controller, workers, queueSize int) *dispatcherFixture {
	t.Helper()

	encSvc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	f := &dispatcherFixture{
		formRepo:    mocks.NewMockFormRepository(ctrl),
		webhookRepo: mocks.NewMockWebhookRepository(ctrl),
		logRepo:     mocks.NewMockWebhookLogRepository(ctrl),
		encSvc:      encSvc,
	}

	f.logRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *domain.WebhookLog) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.entries = append(f.entries, *entry)
			return nil
		}).AnyTimes()

	f.dispatcher = NewWebhookDispatcher(
		f.formRepo, f.webhookRepo, f.logRepo,
		encSvc, NewHMACSignatureService(), http.DefaultClient,
		workers, queueSize, zerolog.Nop(),
	)
	return f
}

func (f *dispatcherFixture) logged() []domain.WebhookLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.WebhookLog, len(f.entries))
	copy(out, f.entries)
	return out
}

func TestWebhookDispatcher_FanoutSignedDelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 2, 16)

	var (
		mu       sync.Mutex
		gotBody  []byte
		gotSig   string
		gotCType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody = body
		gotSig = r.Header.Get("X-Webhook-Signature")
		gotCType = r.Header.Get("Content-Type")
		mu.Unlock()
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	formID := uuid.New()
	form := &domain.Form{ID: formID, Title: "Contact Us", Status: domain.FormStatusPublished}
	secretEnc, err := f.encSvc.Encrypt("whsec_abc")
	require.NoError(t, err)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hook := domain.Webhook{
		ID: uuid.New(), FormID: formID, URL: srv.URL,
		SecretEnc: secretEnc,
		Events:    []string{domain.EventSubmissionCreated},
		IsActive:  true, CreatedAt: createdAt,
	}

	f.formRepo.EXPECT().GetByID(gomock.Any(), formID).Return(form, nil)
	f.webhookRepo.EXPECT().ListActiveByForm(gomock.Any(), formID).Return([]domain.Webhook{hook}, nil)

	f.dispatcher.Start()
	require.NoError(t, f.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    formID,
		EventType: domain.EventSubmissionCreated,
		Data:      json.RawMessage(`{"email":"a@b.co"}`),
	}))
	f.dispatcher.Stop()

	mu.Lock()
	defer mu.Unlock()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "submission.created", payload["event"])
	assert.Equal(t, formID.String(), payload["form_id"])
	assert.Equal(t, "Contact Us", payload["form_title"])
	assert.Equal(t, map[string]any{"email": "a@b.co"}, payload["data"])
	assert.Equal(t, createdAt.Format(time.RFC3339), payload["timestamp"])
	assert.Equal(t, "application/json", gotCType)

	// Signature must be HMAC-SHA256 over the exact wire bytes.
	mac := hmac.New(sha256.New, []byte("whsec_abc"))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)

	entries := f.logged()
	require.Len(t, entries, 1)
	assert.Equal(t, hook.ID, entries[0].WebhookID)
	assert.Equal(t, "submission.created", entries[0].EventType)
	require.NotNil(t, entries[0].ResponseCode)
	assert.Equal(t, http.StatusOK, *entries[0].ResponseCode)
	assert.Equal(t, "ok", entries[0].ResponseBody)
}

func TestWebhookDispatcher_SkipsNonSubscribersAndSignsNothingWithoutSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 1, 16)

	var (
		mu    sync.Mutex
		calls int
		sig   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		sig = r.Header.Get("X-Webhook-Signature")
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	formID := uuid.New()
	form := &domain.Form{ID: formID, Title: "Survey"}
	subscriber := domain.Webhook{
		ID: uuid.New(), FormID: formID, URL: srv.URL,
		Events: []string{domain.EventSubmissionCreated}, IsActive: true,
	}
	other := domain.Webhook{
		ID: uuid.New(), FormID: formID, URL: srv.URL,
		Events: []string{domain.EventFormPublished}, IsActive: true,
	}

	f.formRepo.EXPECT().GetByID(gomock.Any(), formID).Return(form, nil)
	f.webhookRepo.EXPECT().ListActiveByForm(gomock.Any(), formID).Return([]domain.Webhook{subscriber, other}, nil)

	f.dispatcher.Start()
	require.NoError(t, f.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    formID,
		EventType: domain.EventSubmissionCreated,
		Data:      json.RawMessage(`{}`),
	}))
	f.dispatcher.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Empty(t, sig)

	entries := f.logged()
	require.Len(t, entries, 1)
	assert.Equal(t, subscriber.ID, entries[0].WebhookID)
}

func TestWebhookDispatcher_TransportFailureLoggedWithNilCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 1, 16)

	formID := uuid.New()
	hook := domain.Webhook{
		ID: uuid.New(), FormID: formID, URL: "http://127.0.0.1:1",
		Events: []string{domain.EventSubmissionCreated}, IsActive: true,
	}

	f.formRepo.EXPECT().GetByID(gomock.Any(), formID).Return(&domain.Form{ID: formID}, nil)
	f.webhookRepo.EXPECT().ListActiveByForm(gomock.Any(), formID).Return([]domain.Webhook{hook}, nil)

	f.dispatcher.Start()
	require.NoError(t, f.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    formID,
		EventType: domain.EventSubmissionCreated,
	}))
	f.dispatcher.Stop()

	entries := f.logged()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ResponseCode)
	assert.NotEmpty(t, entries[0].ResponseBody)
}

func TestWebhookDispatcher_ResponseBodyTruncated(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 1, 16)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	formID := uuid.New()
	hook := domain.Webhook{
		ID: uuid.New(), FormID: formID, URL: srv.URL,
		Events: []string{domain.EventSubmissionCreated}, IsActive: true,
	}

	f.formRepo.EXPECT().GetByID(gomock.Any(), formID).Return(&domain.Form{ID: formID}, nil)
	f.webhookRepo.EXPECT().ListActiveByForm(gomock.Any(), formID).Return([]domain.Webhook{hook}, nil)

	f.dispatcher.Start()
	require.NoError(t, f.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    formID,
		EventType: domain.EventSubmissionCreated,
	}))
	f.dispatcher.Stop()

	entries := f.logged()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ResponseCode)
	assert.Equal(t, http.StatusBadGateway, *entries[0].ResponseCode)
	assert.Len(t, entries[0].ResponseBody, 500)
}

func TestWebhookDispatcher_MissingFormSkipsQuietly(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 1, 16)

	formID := uuid.New()
	f.formRepo.EXPECT().GetByID(gomock.Any(), formID).Return(nil, assert.AnError)

	f.dispatcher.Start()
	require.NoError(t, f.dispatcher.Enqueue(ports.FanoutJob{
		FormID:    formID,
		EventType: domain.EventSubmissionCreated,
	}))
	f.dispatcher.Stop()

	assert.Empty(t, f.logged())
}

func TestWebhookDispatcher_QueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 1, 1)

	// Workers never started, so the single slot fills and the next enqueue
	// must fail fast instead of blocking.
	require.NoError(t, f.dispatcher.Enqueue(ports.FanoutJob{FormID: uuid.New(), EventType: domain.EventSubmissionCreated}))
	err := f.dispatcher.Enqueue(ports.FanoutJob{FormID: uuid.New(), EventType: domain.EventSubmissionCreated})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestWebhookDispatcher_SendTest(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newDispatcherFixture(t, ctrl, 1, 1)

	var (
		mu      sync.Mutex
		gotBody []byte
		gotSig  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody = body
		gotSig = r.Header.Get("X-Webhook-Signature")
		mu.Unlock()
		w.Write([]byte("received"))
	}))
	defer srv.Close()

	formID := uuid.New()
	secretEnc, err := f.encSvc.Encrypt("whsec_test")
	require.NoError(t, err)
	hook := &domain.Webhook{
		ID: uuid.New(), FormID: formID, URL: srv.URL,
		SecretEnc: secretEnc,
		Events:    []string{domain.EventSubmissionCreated},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	f.formRepo.EXPECT().GetByID(gomock.Any(), formID).Return(&domain.Form{ID: formID, Title: "Feedback"}, nil)

	result, err := f.dispatcher.SendTest(context.Background(), hook)
	require.NoError(t, err)
	require.NotNil(t, result.ResponseCode)
	assert.Equal(t, http.StatusOK, *result.ResponseCode)
	assert.Equal(t, "received", result.ResponseBody)

	mu.Lock()
	defer mu.Unlock()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "test", payload["event"])
	assert.Equal(t, "Feedback", payload["form_title"])
	assert.NotContains(t, payload, "data")

	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)

	// One log row for the manual attempt, event type "test".
	entries := f.logged()
	require.Len(t, entries, 1)
	assert.Equal(t, "test", entries[0].EventType)
}
