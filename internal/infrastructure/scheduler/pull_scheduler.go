package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PullJobStatus represents the status of a pull job
type PullJobStatus string

const (
	PullJobStatusPending PullJobStatus = "PENDING"
	PullJobStatusRunning PullJobStatus = "RUNNING"
	PullJobStatusSuccess PullJobStatus = "SUCCESS"
	PullJobStatusPartial PullJobStatus = "PARTIAL"
	PullJobStatusFailed  PullJobStatus = "FAILED"
)

// PullJob represents one scheduled order pull for a store
type PullJob struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Status      PullJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	// Pull results
	Pulled     int
	Created    int
	ErrorCount int
}

// NewPullJob creates a pending pull job for a store
func NewPullJob(storeID uuid.UUID, maxRetries int) *PullJob {
	return &PullJob{
		ID:         uuid.New(),
		StoreID:    storeID,
		Status:     PullJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *PullJob) Start() {
	now := time.Now()
	j.Status = PullJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the pull outcome
func (j *PullJob) Complete(pulled, created, errorCount int) {
	now := time.Now()
	j.Pulled = pulled
	j.Created = created
	j.ErrorCount = errorCount
	j.CompletedAt = &now
	if errorCount == 0 {
		j.Status = PullJobStatusSuccess
	} else {
		j.Status = PullJobStatusPartial
	}
}

// Fail marks the job as failed
func (j *PullJob) Fail(err string) {
	now := time.Now()
	j.Status = PullJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *PullJob) ShouldRetry() bool {
	return j.Status == PullJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff
func (j *PullJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = PullJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// PullExecutor runs one pull job against the marketplace platform.
// Implementations record the counts on the job; a returned error marks
// the job failed and eligible for retry.
type PullExecutor interface {
	Execute(ctx context.Context, job *PullJob) error
}

// Config holds pull scheduler configuration
type Config struct {
	// Workers is the number of concurrent pull workers
	Workers int
	// JobTimeout is the maximum time one pull may run
	JobTimeout time.Duration
	// Interval is how often every store is enqueued for a pull
	Interval time.Duration
	// RetryAttempts is the number of retries for failed pulls
	RetryAttempts int
	// RetryDelay is the base delay between retries
	RetryDelay time.Duration
}

// DefaultConfig returns the default pull scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		JobTimeout:    10 * time.Minute,
		Interval:      5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// PullScheduler enqueues a pull job for every configured store on a
// fixed interval and runs the jobs through a bounded worker pool. Failed
// jobs are retried with exponential backoff. Completed jobs are kept in
// a small in-memory history for monitoring.
type PullScheduler struct {
	config   Config
	executor PullExecutor
	storeIDs []uuid.UUID
	logger   *zap.Logger

	jobs      chan *PullJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	historyMu  sync.RWMutex
	history    []*PullJob
	maxHistory int
}

// NewPullScheduler creates a pull scheduler for the given stores
func NewPullScheduler(config Config, executor PullExecutor, storeIDs []uuid.UUID, logger *zap.Logger) (*PullScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PullScheduler{
		config:     config,
		executor:   executor,
		storeIDs:   storeIDs,
		logger:     logger,
		jobs:       make(chan *PullJob, 100),
		history:    make([]*PullJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start launches the workers and the interval trigger. The first round
// of pulls is enqueued immediately.
func (s *PullScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.triggerLoop(ctx)

	s.logger.Info("Pull scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("interval", s.config.Interval),
		zap.Int("stores", len(s.storeIDs)),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight jobs up to
// the context deadline
func (s *PullScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Pull scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueStore submits an immediate pull for one store, outside the
// regular interval
func (s *PullScheduler) EnqueueStore(storeID uuid.UUID) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	return s.enqueue(NewPullJob(storeID, s.config.RetryAttempts))
}

// History returns a snapshot of recently completed jobs, newest last
func (s *PullScheduler) History() []*PullJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	out := make([]*PullJob, len(s.history))
	copy(out, s.history)
	return out
}

func (s *PullScheduler) triggerLoop(ctx context.Context) {
	defer s.wg.Done()

	s.enqueueAll()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAll()
		}
	}
}

func (s *PullScheduler) enqueueAll() {
	for _, storeID := range s.storeIDs {
		if err := s.enqueue(NewPullJob(storeID, s.config.RetryAttempts)); err != nil {
			s.logger.Warn("Failed to enqueue pull job",
				zap.String("store_id", storeID.String()),
				zap.Error(err))
		}
	}
}

func (s *PullScheduler) enqueue(job *PullJob) error {
	select {
	case s.jobs <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *PullScheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.runJob(ctx, job)
		}
	}
}

func (s *PullScheduler) runJob(ctx context.Context, job *PullJob) {
	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Pull job failed",
			zap.String("store_id", job.StoreID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err))

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			delay := time.Until(*job.NextRetryAt)
			time.AfterFunc(delay, func() {
				if enqueueErr := s.enqueue(job); enqueueErr != nil {
					s.logger.Warn("Failed to requeue pull job",
						zap.String("store_id", job.StoreID.String()),
						zap.Error(enqueueErr))
				}
			})
			return
		}
	} else {
		s.logger.Info("Pull job finished",
			zap.String("store_id", job.StoreID.String()),
			zap.String("status", string(job.Status)),
			zap.Int("pulled", job.Pulled),
			zap.Int("created", job.Created),
			zap.Int("errors", job.ErrorCount))
	}

	s.recordHistory(job)
}

func (s *PullScheduler) recordHistory(job *PullJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.history = append(s.history, job)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}
