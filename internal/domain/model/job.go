package model

import "time"

type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// Step identifiers. The catalog order is the contract with observers:
// steps_complete is always a prefix of StepCatalog.
const (
	StepResolveIdentity = "resolve_identity"
	StepFetchProfile    = "fetch_profile"
	StepSearchNews      = "search_news"
	StepSearchJobs      = "search_jobs"
	StepSynthesize      = "synthesize"
)

// StepCatalog is the authoritative ordered step list. It is embedded in
// every job record so observers never hardcode their own copy.
func StepCatalog() []string {
	return []string{
		StepResolveIdentity,
		StepFetchProfile,
		StepSearchNews,
		StepSearchJobs,
		StepSynthesize,
	}
}

// ResearchRequest is the immutable submission payload.
type ResearchRequest struct {
	Input string `json:"input"`
	URL   string `json:"url,omitempty"`
}

// ResearchJob is one research request's execution record. It is created
// pending by the submission API and mutated only by the pipeline that
// owns it until it reaches a terminal state.
type ResearchJob struct {
	ID            string          `json:"job_id"`
	Request       ResearchRequest `json:"request"`
	Status        JobStatus       `json:"status"`
	StepCatalog   []string        `json:"step_catalog"`
	StepsComplete []string        `json:"steps_complete"`
	FinalReport   *CompanyReport  `json:"final_report,omitempty"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewResearchJob(id string, req ResearchRequest) *ResearchJob {
	now := time.Now().UTC()
	return &ResearchJob{
		ID:            id,
		Request:       req,
		Status:        JobStatusPending,
		StepCatalog:   StepCatalog(),
		StepsComplete: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (j *ResearchJob) Terminal() bool {
	return j.Status == JobStatusComplete || j.Status == JobStatusError
}

// MarkRunning moves a pending job to running. Running is idempotent;
// terminal jobs never transition again.
func (j *ResearchJob) MarkRunning() bool {
	if j.Terminal() {
		return false
	}
	j.Status = JobStatusRunning
	j.UpdatedAt = time.Now().UTC()
	return true
}

// MarkStepComplete appends a step id exactly once, preserving catalog
// order. Re-appending an already recorded step is a no-op.
func (j *ResearchJob) MarkStepComplete(step string) {
	if j.Terminal() {
		return
	}
	for _, s := range j.StepsComplete {
		if s == step {
			return
		}
	}
	j.StepsComplete = append(j.StepsComplete, step)
	j.UpdatedAt = time.Now().UTC()
}

// Complete attaches the final report and seals the job.
func (j *ResearchJob) Complete(report *CompanyReport) bool {
	if j.Terminal() {
		return false
	}
	j.Status = JobStatusComplete
	j.FinalReport = report
	j.UpdatedAt = time.Now().UTC()
	return true
}

// Fail seals the job with a human-readable error. Steps completed up
// to the failure point stay visible to observers.
func (j *ResearchJob) Fail(msg string) bool {
	if j.Terminal() {
		return false
	}
	j.Status = JobStatusError
	j.Error = msg
	j.UpdatedAt = time.Now().UTC()
	return true
}
