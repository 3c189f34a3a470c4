package adapter

import "context"

// Notifier pushes operator-facing notifications about terminal jobs.
// Failures are logged and never affect job state.
type Notifier interface {
	NotifyJobFinished(ctx context.Context, jobID, status, summary string) error
}
