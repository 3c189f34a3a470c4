// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/adapter"
)

// memJobRepo is a small in-memory job store used by unit tests. It
// mirrors the Redis repo's push-on-change contract.
type memJobRepo struct {
	mu        sync.Mutex
	store     map[string]*model.ResearchJob
	watchers  map[string][]chan *model.ResearchJob
	createErr error
	updateErr error
	// updates records every committed snapshot in order.
	updates []model.ResearchJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{
		store:    make(map[string]*model.ResearchJob),
		watchers: make(map[string][]chan *model.ResearchJob),
	}
}

func cloneJob(j *model.ResearchJob) *model.ResearchJob {
	b, _ := json.Marshal(j)
	var cp model.ResearchJob
	_ = json.Unmarshal(b, &cp)
	return &cp
}

func (m *memJobRepo) Create(ctx context.Context, job *model.ResearchJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	return m.commit(job)
}

func (m *memJobRepo) Update(ctx context.Context, job *model.ResearchJob) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	return m.commit(job)
}

func (m *memJobRepo) commit(job *model.ResearchJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneJob(job)
	m.store[job.ID] = cp
	m.updates = append(m.updates, *cp)

	remaining := m.watchers[job.ID][:0]
	for _, ch := range m.watchers[job.ID] {
		ch <- cloneJob(cp)
		if cp.Terminal() {
			close(ch)
			continue
		}
		remaining = append(remaining, ch)
	}
	m.watchers[job.ID] = remaining
	return nil
}

func (m *memJobRepo) Find(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(j), nil
}

func (m *memJobRepo) Watch(ctx context.Context, jobID string) (<-chan *model.ResearchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ch := make(chan *model.ResearchJob, 32)
	ch <- cloneJob(j)
	if j.Terminal() {
		close(ch)
		return ch, nil
	}
	m.watchers[jobID] = append(m.watchers[jobID], ch)
	return ch, nil
}

// snapshots returns the committed history for one job.
func (m *memJobRepo) snapshots(jobID string) []model.ResearchJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ResearchJob
	for _, u := range m.updates {
		if u.ID == jobID {
			out = append(out, u)
		}
	}
	return out
}

// memQueue is a channel-backed JobQueue.
type memQueue struct {
	ids        chan string
	enqueueErr error
}

func newMemQueue() *memQueue {
	return &memQueue{ids: make(chan string, 16)}
}

func (q *memQueue) Enqueue(ctx context.Context, jobID string) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.ids <- jobID
	return nil
}

func (q *memQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case id := <-q.ids:
		return id, nil
	}
}

// fakeSearch returns canned results per query substring.
type fakeSearch struct {
	results map[string][]adapter.SearchResult
	errFor  map[string]error // query substring -> error
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, query string, maxResults int) ([]adapter.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	for key, err := range f.errFor {
		if strings.Contains(query, key) {
			return nil, err
		}
	}
	for key, res := range f.results {
		if strings.Contains(query, key) {
			return res, nil
		}
	}
	return []adapter.SearchResult{{Title: "result", URL: "https://example.com", Content: "content"}}, nil
}

// fakeAI answers Generate by prompt substring and GenerateJSON with a
// canned JSON document.
type fakeAI struct {
	generate    map[string]string // prompt substring -> reply
	generateErr error
	jsonDoc     string
	jsonErr     error
	// prompts records every prompt seen, for assertions.
	mu      sync.Mutex
	prompts []string
}

func (f *fakeAI) record(prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
}

func (f *fakeAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (f *fakeAI) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.record(prompt)
	if f.generateErr != nil {
		return "", f.generateErr
	}
	for key, reply := range f.generate {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return "ok", nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, model, prompt string, out any) error {
	f.record(prompt)
	if f.jsonErr != nil {
		return f.jsonErr
	}
	doc := f.jsonDoc
	if doc == "" {
		doc = "{}"
	}
	return json.Unmarshal([]byte(doc), out)
}

// fakeScraper is an in-memory ProfileScraper.
type fakeScraper struct {
	profile *adapter.CompanyProfile
	err     error
}

func (f *fakeScraper) ScrapeCompany(ctx context.Context, linkedinURL string) (*adapter.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

// fakeWeb is an in-memory WebScraper.
type fakeWeb struct {
	markdown    string
	markdownErr error
	jobs        []adapter.ExtractedJob
	jobsErr     error
}

func (f *fakeWeb) ScrapeMarkdown(ctx context.Context, url string) (string, error) {
	if f.markdownErr != nil {
		return "", f.markdownErr
	}
	return f.markdown, nil
}

func (f *fakeWeb) ExtractJobs(ctx context.Context, careersURL string) ([]adapter.ExtractedJob, error) {
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

// fakeNotifier records terminal notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) NotifyJobFinished(ctx context.Context, jobID, status, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, jobID+":"+status)
	return nil
}
