package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/rs/zerolog"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.TipsRunJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job %s did not reach %s (last: %+v)", jobID, want, job)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, store, zerolog.Nop())
	ctx := context.Background()

	err := q.Start(ctx, func(ctx context.Context, job *jobs.TipsRunJob) error {
		job.TipCount = 4
		job.TopTip = "Budget überschritten"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()

	job := &jobs.TipsRunJob{UserID: "u1", StartDate: "2024-05-01"}
	if err := q.PublishTipsRun(ctx, job); err != nil {
		t.Fatal(err)
	}
	if job.JobID == "" {
		t.Fatal("job ID not assigned")
	}
	if job.MaxRetries != jobs.DefaultMaxRetries {
		t.Errorf("MaxRetries = %d", job.MaxRetries)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.TipCount != 4 || done.TopTip != "Budget überschritten" {
		t.Errorf("summary = %d/%q", done.TipCount, done.TopTip)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("timestamps not set")
	}
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store, zerolog.Nop()).WithBackoff(time.Millisecond)
	ctx := context.Background()

	var attempts int32
	q.Start(ctx, func(ctx context.Context, job *jobs.TipsRunJob) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("store unavailable")
		}
		return nil
	})
	defer q.Close()

	job := &jobs.TipsRunJob{UserID: "u1"}
	if err := q.PublishTipsRun(ctx, job); err != nil {
		t.Fatal(err)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", done.RetryCount)
	}
	if done.Error != "" {
		t.Errorf("Error = %q, want cleared", done.Error)
	}
}

func TestQueue_FailsAfterMaxRetries(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store, zerolog.Nop()).WithBackoff(time.Millisecond)
	ctx := context.Background()

	var attempts int32
	q.Start(ctx, func(ctx context.Context, job *jobs.TipsRunJob) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	})
	defer q.Close()

	job := &jobs.TipsRunJob{UserID: "u1", MaxRetries: 2}
	q.PublishTipsRun(ctx, job)

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.Error != "boom" || failed.RetryCount != 2 {
		t.Errorf("failed job = %+v", failed)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(1, 1, NewStore(), zerolog.Nop())
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.PublishTipsRun(context.Background(), &jobs.TipsRunJob{UserID: "u1"}); err == nil {
		t.Fatal("expected error publishing to closed queue")
	}
	if err := q.Start(context.Background(), nil); err == nil {
		t.Fatal("expected error starting closed queue")
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	for status, want := range map[jobs.JobStatus]bool{
		jobs.JobStatusPending:   false,
		jobs.JobStatusRunning:   false,
		jobs.JobStatusRetrying:  false,
		jobs.JobStatusCompleted: true,
		jobs.JobStatusFailed:    true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v", status, got)
		}
	}
}
