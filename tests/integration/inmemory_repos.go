package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Form Repo ---

type inMemoryFormRepo struct {
	mu    sync.RWMutex
	forms map[uuid.UUID]*domain.Form
}

func newInMemoryFormRepo() *inMemoryFormRepo {
	return &inMemoryFormRepo{forms: make(map[uuid.UUID]*domain.Form)}
}

func (r *inMemoryFormRepo) Create(ctx context.Context, f *domain.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.forms[f.ID] = &cp
	return nil
}

func (r *inMemoryFormRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, apperror.ErrFormNotFound()
	}
	cp := *f
	return &cp, nil
}

func (r *inMemoryFormRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Form
	for _, f := range r.forms {
		if f.CreatedBy == ownerID {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryFormRepo) Publish(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return apperror.ErrFormNotFound()
	}
	f.Status = domain.FormStatusPublished
	f.PublishedAt = &publishedAt
	f.UpdatedAt = publishedAt
	f.Version++
	return nil
}

// --- In-Memory Submission Repo ---

type inMemorySubmissionRepo struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]*domain.Submission
}

func newInMemorySubmissionRepo() *inMemorySubmissionRepo {
	return &inMemorySubmissionRepo{submissions: make(map[uuid.UUID]*domain.Submission)}
}

func (r *inMemorySubmissionRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.submissions[s.ID] = &cp
	return nil
}

func (r *inMemorySubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, apperror.ErrNotFound("Submission")
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySubmissionRepo) ListByForm(ctx context.Context, formID uuid.UUID, limit, offset int) ([]domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Submission
	for _, s := range r.submissions {
		if s.FormID == formID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if offset >= len(result) {
		return []domain.Submission{}, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

// --- In-Memory Webhook Repo ---

type inMemoryWebhookRepo struct {
	mu    sync.RWMutex
	hooks map[uuid.UUID]*domain.Webhook
}

func newInMemoryWebhookRepo() *inMemoryWebhookRepo {
	return &inMemoryWebhookRepo{hooks: make(map[uuid.UUID]*domain.Webhook)}
}

func (r *inMemoryWebhookRepo) Create(ctx context.Context, w *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.hooks[w.ID] = &cp
	return nil
}

func (r *inMemoryWebhookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.hooks[id]
	if !ok {
		return nil, apperror.ErrWebhookNotFound()
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWebhookRepo) ListByForm(ctx context.Context, formID uuid.UUID) ([]domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Webhook
	for _, w := range r.hooks {
		if w.FormID == formID {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (r *inMemoryWebhookRepo) ListActiveByForm(ctx context.Context, formID uuid.UUID) ([]domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Webhook
	for _, w := range r.hooks {
		if w.FormID == formID && w.IsActive {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (r *inMemoryWebhookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hooks[id]; !ok {
		return apperror.ErrWebhookNotFound()
	}
	delete(r.hooks, id)
	return nil
}

// --- In-Memory Webhook Log Repo ---

type inMemoryWebhookLogRepo struct {
	mu     sync.RWMutex
	nextID int64
	logs   []domain.WebhookLog
}

func newInMemoryWebhookLogRepo() *inMemoryWebhookLogRepo {
	return &inMemoryWebhookLogRepo{}
}

func (r *inMemoryWebhookLogRepo) Create(ctx context.Context, l *domain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.logs = append(r.logs, *l)
	return nil
}

func (r *inMemoryWebhookLogRepo) ListByWebhook(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.WebhookLog
	for i := len(r.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if r.logs[i].WebhookID == webhookID {
			result = append(result, r.logs[i])
		}
	}
	return result, nil
}

func (r *inMemoryWebhookLogRepo) count(webhookID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, l := range r.logs {
		if l.WebhookID == webhookID {
			n++
		}
	}
	return n
}

// --- In-Memory Analytics Repo ---

type inMemoryAnalyticsRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.FormAnalytics
}

func newInMemoryAnalyticsRepo() *inMemoryAnalyticsRepo {
	return &inMemoryAnalyticsRepo{rows: make(map[uuid.UUID]*domain.FormAnalytics)}
}

func (r *inMemoryAnalyticsRepo) Create(ctx context.Context, a *domain.FormAnalytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.FormID]; !ok {
		cp := *a
		r.rows[a.FormID] = &cp
	}
	return nil
}

func (r *inMemoryAnalyticsRepo) GetByForm(ctx context.Context, formID uuid.UUID) (*domain.FormAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[formID]
	if !ok {
		return &domain.FormAnalytics{FormID: formID}, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAnalyticsRepo) IncrementSubmissions(ctx context.Context, tx pgx.Tx, formID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsert(formID).Submissions++
	return nil
}

func (r *inMemoryAnalyticsRepo) IncrementViews(ctx context.Context, formID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsert(formID).Views++
	return nil
}

func (r *inMemoryAnalyticsRepo) upsert(formID uuid.UUID) *domain.FormAnalytics {
	a, ok := r.rows[formID]
	if !ok {
		a = &domain.FormAnalytics{FormID: formID}
		r.rows[formID] = a
	}
	a.LastUpdated = time.Now()
	return a
}

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return apperror.ErrUsernameExists()
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.ErrNotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound("User")
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *l)
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
