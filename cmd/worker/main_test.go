package main

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/jobs/inmemory"
	"github.com/rs/zerolog"
)

func TestSplitUsers(t *testing.T) {
	got := splitUsers(" u1, ,u2,,u3 ")
	if len(got) != 3 || got[0] != "u1" || got[2] != "u3" {
		t.Errorf("splitUsers = %v", got)
	}
	if got := splitUsers(""); len(got) != 0 {
		t.Errorf("empty input = %v", got)
	}
}

func TestWaitForJobs(t *testing.T) {
	store := inmemory.NewStore()
	ctx := context.Background()
	store.SaveJob(ctx, &jobs.TipsRunJob{JobID: "a", UserID: "u1", Status: jobs.JobStatusCompleted})
	store.SaveJob(ctx, &jobs.TipsRunJob{JobID: "b", UserID: "u2", Status: jobs.JobStatusFailed})

	done := waitForJobs(ctx, store, []string{"a", "b"})
	if len(done) != 2 {
		t.Fatalf("done = %d", len(done))
	}
	if failed := summarize(zerolog.Nop(), done); failed != 1 {
		t.Errorf("failed = %d", failed)
	}
}

func TestWaitForJobs_Deadline(t *testing.T) {
	store := inmemory.NewStore()
	store.SaveJob(context.Background(), &jobs.TipsRunJob{JobID: "a", Status: jobs.JobStatusRunning})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if done := waitForJobs(ctx, store, []string{"a"}); len(done) != 0 {
		t.Errorf("done = %d, want 0", len(done))
	}
}
