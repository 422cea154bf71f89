package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.TipsRunJob{JobID: "j1", UserID: "u1", Status: jobs.JobStatusPending}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	job.Status = jobs.JobStatusRunning
	got, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("stored job aliased caller's value: %s", got.Status)
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	if err := NewStore().SaveJob(context.Background(), &jobs.TipsRunJob{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.GetJob(context.Background(), "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob err = %v", err)
	}
	if err := s.UpdateJobStatus(context.Background(), "missing", jobs.JobStatusFailed, ""); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("UpdateJobStatus err = %v", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seed := []*jobs.TipsRunJob{
		{JobID: "c", UserID: "u1", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(2 * time.Minute)},
		{JobID: "a", UserID: "u1", Status: jobs.JobStatusPending, CreatedAt: base},
		{JobID: "b", UserID: "u2", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(time.Minute)},
	}
	for _, j := range seed {
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all", jobs.JobFilter{}, []string{"a", "b", "c"}},
		{"by user", jobs.JobFilter{UserID: "u1"}, []string{"a", "c"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusCompleted}, []string{"b", "c"}},
		{"limit", jobs.JobFilter{Limit: 2}, []string{"a", "b"}},
		{"offset", jobs.JobFilter{Offset: 1}, []string{"b", "c"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d jobs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].JobID != id {
					t.Errorf("job %d = %s, want %s", i, got[i].JobID, id)
				}
			}
		})
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.SaveJob(ctx, &jobs.TipsRunJob{JobID: "j1", Status: jobs.JobStatusRunning})

	if err := s.UpdateJobStatus(ctx, "j1", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetJob(ctx, "j1")
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("got %s/%q", got.Status, got.Error)
	}
}
