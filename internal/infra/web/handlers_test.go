package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
)

type fakeResearchUC struct {
	submitID  string
	submitErr error

	jobs    map[string]*model.ResearchJob
	findErr error

	watchCh  chan *model.ResearchJob
	watchErr error
}

func (f *fakeResearchUC) Submit(ctx context.Context, req model.ResearchRequest) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if strings.TrimSpace(req.Input) == "" {
		return "", fmt.Errorf("%w: input is required", domain.ErrInvalidArgument)
	}
	return f.submitID, nil
}

func (f *fakeResearchUC) Find(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (f *fakeResearchUC) Watch(ctx context.Context, jobID string) (<-chan *model.ResearchJob, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	if _, ok := f.jobs[jobID]; !ok {
		return nil, domain.ErrNotFound
	}
	return f.watchCh, nil
}

func newTestServer(uc *fakeResearchUC) *Server {
	log := zerolog.Nop()
	return NewServer(uc, &log)
}

func TestSubmitHandlerAccepted(t *testing.T) {
	uc := &fakeResearchUC{submitID: "01JOBIDTEST00000000000000"}
	srv := newTestServer(uc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/research/", strings.NewReader(`{"input":"Acme"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID != "01JOBIDTEST00000000000000" {
		t.Errorf("job_id = %q", resp.JobID)
	}
}

func TestSubmitHandlerRejectsBadRequests(t *testing.T) {
	srv := newTestServer(&fakeResearchUC{submitID: "id"})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"input":`},
		{"empty input", `{"input":"  "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/research/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error body is empty")
			}
		})
	}
}

func TestSubmitHandlerInternalError(t *testing.T) {
	uc := &fakeResearchUC{submitErr: fmt.Errorf("%w: redis gone", domain.ErrUpstream)}
	srv := newTestServer(uc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/research/", strings.NewReader(`{"input":"Acme"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	job := model.NewResearchJob("01JOBIDTEST00000000000000", model.ResearchRequest{Input: "Acme"})
	job.MarkRunning()
	job.MarkStepComplete(model.StepResolveIdentity)
	uc := &fakeResearchUC{jobs: map[string]*model.ResearchJob{job.ID: job}}
	srv := newTestServer(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/research/"+job.ID, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got model.ResearchJob
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != job.ID {
		t.Errorf("job_id = %q", got.ID)
	}
	if got.Status != model.JobStatusRunning {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.StepCatalog) != len(model.StepCatalog()) {
		t.Errorf("step_catalog = %v", got.StepCatalog)
	}
	if len(got.StepsComplete) != 1 || got.StepsComplete[0] != model.StepResolveIdentity {
		t.Errorf("steps_complete = %v", got.StepsComplete)
	}
}

func TestStatusHandlerNotFound(t *testing.T) {
	srv := newTestServer(&fakeResearchUC{jobs: map[string]*model.ResearchJob{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/research/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(&fakeResearchUC{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
