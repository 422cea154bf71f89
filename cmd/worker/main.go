package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/finance-insights/internal/backend"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/jobs/inmemory"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	var (
		envFile   = flag.String("env", ".env", "Path to an optional .env file")
		users     = flag.String("users", "", "Comma-separated user IDs to evaluate (required)")
		startDate = flag.String("start", "", "Range start YYYY-MM-DD (optional)")
		endDate   = flag.String("end", "", "Range end YYYY-MM-DD (optional)")
		timeout   = flag.Duration("timeout", 10*time.Minute, "Overall deadline for the batch")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	userIDs := splitUsers(*users)
	if len(userIDs) == 0 {
		log.Fatal().Msg("-users is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(len(userIDs), cfg.WorkerCount, jobStore, log)
	if err := jobQueue.Start(ctx, jobs.NewTipsRunHandler(store.NewEngine(cfg, log))); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	jobIDs := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		job := &jobs.TipsRunJob{UserID: userID, StartDate: *startDate, EndDate: *endDate}
		if err := jobQueue.PublishTipsRun(ctx, job); err != nil {
			log.Fatal().Err(err).Str("user_id", userID).Msg("Failed to enqueue tips run")
		}
		jobIDs = append(jobIDs, job.JobID)
	}
	log.Info().Int("users", len(jobIDs)).Msg("Tips runs enqueued")

	finished := waitForJobs(ctx, jobStore, jobIDs)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	failed := summarize(log, finished)
	if failed > 0 || len(finished) < len(jobIDs) {
		log.Error().Int("failed", failed).Int("unfinished", len(jobIDs)-len(finished)).Msg("Batch incomplete")
		os.Exit(1)
	}
	log.Info().Msg("Batch completed")
}

func splitUsers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// waitForJobs polls the store until every job is terminal or ctx ends, and
// returns the terminal jobs.
func waitForJobs(ctx context.Context, store jobs.JobStore, jobIDs []string) []*jobs.TipsRunJob {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		var done []*jobs.TipsRunJob
		for _, id := range jobIDs {
			job, err := store.GetJob(ctx, id)
			if err == nil && job.Status.Terminal() {
				done = append(done, job)
			}
		}
		if len(done) == len(jobIDs) {
			return done
		}

		select {
		case <-ctx.Done():
			return done
		case <-ticker.C:
		}
	}
}

func summarize(log zerolog.Logger, finished []*jobs.TipsRunJob) int {
	failed := 0
	for _, job := range finished {
		if job.Status == jobs.JobStatusFailed {
			failed++
			log.Error().Str("user_id", job.UserID).Str("error", job.Error).Int("retries", job.RetryCount).Msg("Tips run failed")
			continue
		}
		log.Info().Str("user_id", job.UserID).Int("tips", job.TipCount).Str("top_tip", job.TopTip).Msg("Tips run summary")
	}
	return failed
}
