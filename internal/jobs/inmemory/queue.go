package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Queue is an in-memory job publisher and consumer backed by a channel.
// It suits single-instance deployments and tests.
type Queue struct {
	jobChan     chan *jobs.TipsRunJob
	closeChan   chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	store       jobs.JobStore
	log         zerolog.Logger
	workerCount int
	backoff     time.Duration
	closed      bool
}

// NewQueue creates a queue holding up to bufferSize pending jobs and running
// workerCount workers once started.
func NewQueue(bufferSize, workerCount int, store jobs.JobStore, log zerolog.Logger) *Queue {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Queue{
		jobChan:     make(chan *jobs.TipsRunJob, bufferSize),
		closeChan:   make(chan struct{}),
		store:       store,
		log:         log,
		workerCount: workerCount,
		backoff:     time.Second,
	}
}

// WithBackoff sets the base retry delay. The n-th retry waits n times the base.
func (q *Queue) WithBackoff(d time.Duration) *Queue {
	q.backoff = d
	return q
}

// PublishTipsRun assigns defaults, records the job and enqueues it.
func (q *Queue) PublishTipsRun(ctx context.Context, job *jobs.TipsRunJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("PublishTipsRun: queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishTipsRun: save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("PublishTipsRun: queue is closed")
	}
}

// Start launches the worker pool.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("Start: queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.log.Info().Int("workers", q.workerCount).Msg("Job queue started")
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob runs one attempt and either records the outcome or schedules a retry.
func (q *Queue) processJob(ctx context.Context, job *jobs.TipsRunJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	log := q.log.With().Str("job_id", job.JobID).Str("user_id", job.UserID).Logger()

	retry := false
	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Int("tips", job.TipCount).Str("top_tip", job.TopTip).Msg("Tips run completed")
	case job.RetryCount < job.MaxRetries:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		retry = true
	default:
		job.Error = err.Error()
		job.Status = jobs.JobStatusFailed
		log.Error().Err(err).Int("retries", job.RetryCount).Msg("Tips run failed")
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
	if !retry {
		return
	}

	// The retrying state is stored before the timer can publish the next attempt.
	backoff := time.Duration(job.RetryCount) * q.backoff
	log.Warn().Err(err).Int("retry", job.RetryCount).Dur("backoff", backoff).Msg("Tips run failed, retrying")
	time.AfterFunc(backoff, func() {
		job.Status = jobs.JobStatusPending
		job.StartedAt = nil
		job.CompletedAt = nil
		if err := q.PublishTipsRun(ctx, job); err != nil {
			log.Error().Err(err).Msg("Failed to re-enqueue tips run")
		}
	})
}

// Stop closes the queue and waits for in-flight jobs or ctx, whichever ends first.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue without a deadline.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
