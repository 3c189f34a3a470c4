package model

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	job := NewResearchJob("job-1", ResearchRequest{Input: "Acme"})

	if job.Status != JobStatusPending {
		t.Fatalf("new job status = %s, want pending", job.Status)
	}
	if len(job.StepCatalog) != len(StepCatalog()) {
		t.Fatalf("catalog not embedded in job record")
	}

	if !job.MarkRunning() {
		t.Fatal("MarkRunning on pending job returned false")
	}
	if job.Status != JobStatusRunning {
		t.Fatalf("status = %s, want running", job.Status)
	}

	if !job.Complete(&CompanyReport{CompanyName: "Acme"}) {
		t.Fatal("Complete on running job returned false")
	}
	if !job.Terminal() {
		t.Fatal("completed job not terminal")
	}

	// Terminal is final: no further transitions.
	if job.Fail("late failure") {
		t.Fatal("Fail mutated a terminal job")
	}
	if job.MarkRunning() {
		t.Fatal("MarkRunning mutated a terminal job")
	}
	if job.Status != JobStatusComplete {
		t.Fatalf("terminal status changed to %s", job.Status)
	}
}

func TestFailKeepsPartialSteps(t *testing.T) {
	job := NewResearchJob("job-2", ResearchRequest{Input: "Acme"})
	job.MarkRunning()
	job.MarkStepComplete(StepResolveIdentity)

	if !job.Fail("upstream call failed: tavily http 500") {
		t.Fatal("Fail on running job returned false")
	}
	if job.Status != JobStatusError {
		t.Fatalf("status = %s, want error", job.Status)
	}
	if job.Error == "" {
		t.Fatal("error string not recorded")
	}
	if len(job.StepsComplete) != 1 || job.StepsComplete[0] != StepResolveIdentity {
		t.Fatalf("partial steps lost: %v", job.StepsComplete)
	}
	if job.FinalReport != nil {
		t.Fatal("failed job carries a final report")
	}
}

func TestMarkStepCompleteIdempotent(t *testing.T) {
	job := NewResearchJob("job-3", ResearchRequest{Input: "Acme"})
	job.MarkRunning()

	job.MarkStepComplete(StepResolveIdentity)
	job.MarkStepComplete(StepResolveIdentity)
	job.MarkStepComplete(StepFetchProfile)

	if len(job.StepsComplete) != 2 {
		t.Fatalf("steps recorded %v, want 2 unique entries", job.StepsComplete)
	}
}

func TestStepsCompleteIsCatalogPrefix(t *testing.T) {
	job := NewResearchJob("job-4", ResearchRequest{Input: "Acme"})
	job.MarkRunning()

	catalog := StepCatalog()
	for i, step := range catalog {
		job.MarkStepComplete(step)
		for j := 0; j <= i; j++ {
			if job.StepsComplete[j] != catalog[j] {
				t.Fatalf("steps_complete %v is not a prefix of the catalog after %d steps", job.StepsComplete, i+1)
			}
		}
	}
}
