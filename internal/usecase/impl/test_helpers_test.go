package impl

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/domain/service"
)

// --- In-memory repositories ---
// The fakes mirror repository semantics closely enough for usecase tests:
// not-found sentinels, ownership scoping, generated IDs and timestamps.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		clone := *user

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		users = append(users, &clone)
	}
	if offset >= len(users) {
		return nil, nil
	}
	end := min(offset+limit, len(users))

	return users[offset:end], nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*entity.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*entity.Document)}
}

func (r *fakeDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc, ok := r.docs[id]; ok {
		clone := *doc

		return &clone, nil
	}

	return nil, repository.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) FindByIDForOwner(_ context.Context, id, ownerID uuid.UUID) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc, ok := r.docs[id]; ok && doc.OwnerID == ownerID {
		clone := *doc

		return &clone, nil
	}

	return nil, repository.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]*entity.Document, 0)
	for _, doc := range r.docs {
		if doc.OwnerID == ownerID {
			clone := *doc
			docs = append(docs, &clone)
		}
	}
	if offset >= len(docs) {
		return nil, nil
	}
	end := min(offset+limit, len(docs))

	return docs[offset:end], nil
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc.ID = uuid.New()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	clone := *doc
	r.docs[doc.ID] = &clone

	return nil
}

func (r *fakeDocumentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return repository.ErrDocumentNotFound
	}
	doc.Status = status

	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(r.docs, id)

	return nil
}

func (r *fakeDocumentRepo) status(id uuid.UUID) entity.DocumentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.docs[id].Status
}

type fakeExtractionRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.ExtractionJob
	data map[uuid.UUID][]*entity.ExtractedData
}

func newFakeExtractionRepo() *fakeExtractionRepo {
	return &fakeExtractionRepo{
		jobs: make(map[uuid.UUID]*entity.ExtractionJob),
		data: make(map[uuid.UUID][]*entity.ExtractedData),
	}
}

func (r *fakeExtractionRepo) FindJobByID(_ context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		clone := *job

		return &clone, nil
	}

	return nil, repository.ErrJobNotFound
}

func (r *fakeExtractionRepo) FindJobByIDForUser(_ context.Context, id, userID uuid.UUID) (*entity.ExtractionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok && job.UserID == userID {
		clone := *job

		return &clone, nil
	}

	return nil, repository.ErrJobNotFound
}

func (r *fakeExtractionRepo) ListJobsByUser(_ context.Context, userID uuid.UUID, offset, limit int) ([]*entity.ExtractionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*entity.ExtractionJob, 0)
	for _, job := range r.jobs {
		if job.UserID == userID {
			clone := *job
			jobs = append(jobs, &clone)
		}
	}
	if offset >= len(jobs) {
		return nil, nil
	}
	end := min(offset+limit, len(jobs))

	return jobs[offset:end], nil
}

func (r *fakeExtractionRepo) CreateJob(_ context.Context, job *entity.ExtractionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	clone := *job
	r.jobs[job.ID] = &clone

	return nil
}

func (r *fakeExtractionRepo) UpdateJob(_ context.Context, job *entity.ExtractionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return repository.ErrJobNotFound
	}
	job.UpdatedAt = time.Now()
	clone := *job
	r.jobs[job.ID] = &clone

	return nil
}

func (r *fakeExtractionRepo) CreateData(_ context.Context, rows []*entity.ExtractedData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		row.ID = uuid.New()
		clone := *row
		r.data[row.JobID] = append(r.data[row.JobID], &clone)
	}

	return nil
}

func (r *fakeExtractionRepo) FindDataByJob(_ context.Context, jobID uuid.UUID) ([]*entity.ExtractedData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]*entity.ExtractedData, 0, len(r.data[jobID]))
	for _, row := range r.data[jobID] {
		clone := *row
		rows = append(rows, &clone)
	}

	return rows, nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*entity.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]*entity.Template)}
}

func (r *fakeTemplateRepo) FindByIDForOwner(_ context.Context, id, ownerID uuid.UUID) (*entity.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tpl, ok := r.templates[id]; ok && tpl.OwnerID == ownerID {
		clone := *tpl

		return &clone, nil
	}

	return nil, repository.ErrTemplateNotFound
}

func (r *fakeTemplateRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tpls := make([]*entity.Template, 0)
	for _, tpl := range r.templates {
		if tpl.OwnerID == ownerID {
			clone := *tpl
			tpls = append(tpls, &clone)
		}
	}
	if offset >= len(tpls) {
		return nil, nil
	}
	end := min(offset+limit, len(tpls))

	return tpls[offset:end], nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, tpl *entity.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tpl.ID = uuid.New()
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = tpl.CreatedAt
	clone := *tpl
	r.templates[tpl.ID] = &clone

	return nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, tpl *entity.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[tpl.ID]; !ok {
		return repository.ErrTemplateNotFound
	}
	clone := *tpl
	r.templates[tpl.ID] = &clone

	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return repository.ErrTemplateNotFound
	}
	delete(r.templates, id)

	return nil
}

// --- Transaction manager ---

// fakeTxManager hands out a factory over the shared fakes. Rollback is not
// simulated; tests assert observable behavior, not atomicity.
type fakeTxManager struct {
	factory *fakeRepoFactory
}

type fakeRepoFactory struct {
	users       *fakeUserRepo
	documents   *fakeDocumentRepo
	extractions *fakeExtractionRepo
	templates   *fakeTemplateRepo
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.users }

func (f *fakeRepoFactory) DocumentRepo() repository.DocumentRepository { return f.documents }

func (f *fakeRepoFactory) ExtractionRepo() repository.ExtractionRepository { return f.extractions }

func (f *fakeRepoFactory) TemplateRepo() repository.TemplateRepository { return f.templates }

func (m *fakeTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// --- Services ---

// fakeHasher is a transparent stand-in for bcrypt.
type fakeHasher struct {
	weakPasswords map[string]bool
}

func (h *fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (h *fakeHasher) Check(password, hash string) bool { return hash == "hashed:"+password }

func (h *fakeHasher) ValidatePasswordStrength(password string) error {
	if h.weakPasswords[password] {
		return domainerrors.ErrPasswordStrength.WrapMessage("password rejected by policy")
	}

	return nil
}

// fakeTokenService issues predictable tokens and records the last claims.
type fakeTokenService struct {
	lastSubject uuid.UUID
	lastScopes  []string
	lastExtra   map[string]string
}

func (s *fakeTokenService) Issue(subject uuid.UUID, scopes []string, extra map[string]string, _ time.Duration) (string, error) {
	s.lastSubject = subject
	s.lastScopes = scopes
	s.lastExtra = extra

	return "token-for-" + subject.String(), nil
}

func (s *fakeTokenService) Validate(string) (*service.Claims, error) {
	return nil, domainerrors.ErrInvalidToken
}

func (s *fakeTokenService) AccessTokenTTL() time.Duration { return time.Hour }

// fakeQueue runs tasks inline, or rejects everything when full.
type fakeQueue struct {
	full      bool
	submitted []string
}

func (q *fakeQueue) Submit(name string, task service.Task) error {
	if q.full {
		return domainerrors.ErrQueueFull.WrapMessage("task queue is at capacity")
	}
	q.submitted = append(q.submitted, name)
	task(context.Background())

	return nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.JobEvent
}

func (p *fakePublisher) PublishJobEvent(_ context.Context, event *service.JobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	clone := *event
	p.events = append(p.events, &clone)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]string, 0, len(p.events))
	for _, event := range p.events {
		statuses = append(statuses, event.Status)
	}

	return statuses
}

// fakeAnalyzer returns canned fields or a canned error.
type fakeAnalyzer struct {
	fields []service.ExtractedField
	err    error
}

func (a *fakeAnalyzer) Analyze(context.Context, *entity.Document) ([]service.ExtractedField, error) {
	return a.fields, a.err
}

// fakeResolver dispatches every supported class to one analyzer.
type fakeResolver struct {
	analyzer service.DocumentAnalyzer
}

func (r *fakeResolver) Resolve(doc *entity.Document) (service.DocumentAnalyzer, bool) {
	if doc.Class() == entity.FileTypeUnsupported {
		return nil, false
	}

	return r.analyzer, true
}

// fakeFileStore is a map-backed FileStore.
type fakeFileStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failSave bool
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: make(map[string][]byte)}
}

func (s *fakeFileStore) Save(_ context.Context, key, _ string, r io.Reader) error {
	if s.failSave {
		return domainerrors.ErrInternalError.WrapMessage("blob store unavailable")
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf

	return nil
}

func (s *fakeFileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.objects[key]
	if !ok {
		return nil, domainerrors.ErrNotFound.WrapMessage("blob missing")
	}

	return io.NopCloser(bytes.NewReader(buf)), nil
}

func (s *fakeFileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)

	return nil
}

// --- Harness ---

type extractionHarness struct {
	svc         *extractionService
	users       *fakeUserRepo
	documents   *fakeDocumentRepo
	extractions *fakeExtractionRepo
	queue       *fakeQueue
	publisher   *fakePublisher
	resolver    *fakeResolver
}

func newExtractionHarness(analyzer *fakeAnalyzer) *extractionHarness {
	users := newFakeUserRepo()
	documents := newFakeDocumentRepo()
	extractions := newFakeExtractionRepo()
	templates := newFakeTemplateRepo()

	queue := &fakeQueue{}
	publisher := &fakePublisher{}
	resolver := &fakeResolver{analyzer: analyzer}

	svc := NewExtractionService(ExtractionServiceParams{
		TxManager:      &fakeTxManager{factory: &fakeRepoFactory{users: users, documents: documents, extractions: extractions, templates: templates}},
		ExtractionRepo: extractions,
		DocumentRepo:   documents,
		Analyzers:      resolver,
		Queue:          queue,
		Publisher:      publisher,
		Logger:         slog.Default(),
	}).(*extractionService)

	return &extractionHarness{
		svc:         svc,
		users:       users,
		documents:   documents,
		extractions: extractions,
		queue:       queue,
		publisher:   publisher,
		resolver:    resolver,
	}
}

func (h *extractionHarness) addDocument(ownerID uuid.UUID, fileType string) *entity.Document {
	doc := &entity.Document{
		Filename:    "file." + fileType,
		StoragePath: "documents/" + fileType,
		FileType:    fileType,
		Status:      entity.DocumentStatusUploaded,
		OwnerID:     ownerID,
	}
	_ = h.documents.Create(context.Background(), doc)

	return doc
}
