package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by a JobStore for an unknown job ID.
var ErrJobNotFound = errors.New("job not found")

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed and will not be retried.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// DefaultMaxRetries applies to jobs published without MaxRetries.
const DefaultMaxRetries = 3

// TipsRunJob generates tips for one user and range in the background.
// Only a summary of the result is kept.
type TipsRunJob struct {
	JobID     string `json:"job_id"`
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	Status JobStatus `json:"status"`

	// TipCount and TopTip summarize the last successful run.
	TipCount int    `json:"tip_count"`
	TopTip   string `json:"top_tip,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// Publisher enqueues jobs.
type Publisher interface {
	PublishTipsRun(ctx context.Context, job *TipsRunJob) error
	Close() error
}

// Consumer runs queued jobs.
type Consumer interface {
	// Start launches the workers and returns immediately.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. It may fill in the job's result summary.
// A returned error schedules a retry until MaxRetries is reached.
type JobHandler func(ctx context.Context, job *TipsRunJob) error

// JobStore keeps job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *TipsRunJob) error
	// GetJob returns ErrJobNotFound for unknown IDs.
	GetJob(ctx context.Context, jobID string) (*TipsRunJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*TipsRunJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus

	Limit  int
	Offset int
}
