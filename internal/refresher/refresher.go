// Package refresher warms the daily caches on a cron schedule so the first
// request of the day does not pay for a full season fetch.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
)

const (
	defaultSchedule = "30 9 * * *"
	defaultTimeout  = 30 * time.Minute
	unreadyAfter    = 3
)

// ErrAlreadyRunning is returned by Trigger while a cycle is in flight.
var ErrAlreadyRunning = errors.New("refresher: refresh already running")

// Job warms the caches. force bypasses cached artifacts.
type Job func(ctx context.Context, force bool) error

// Config controls the schedule.
type Config struct {
	// Schedule is a standard five-field cron expression.
	Schedule string
	// Timeout bounds one cycle.
	Timeout time.Duration
	// WarmOnStart runs a cycle as soon as Start is called.
	WarmOnStart bool
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastRunID           string    `json:"lastRunId,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether a cycle has succeeded and failures are not piling up.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < unreadyAfter
}

// Refresher runs Job on a cron schedule.
type Refresher struct {
	job     Job
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Recorder

	cron    *cron.Cron
	running atomic.Bool
	warm    sync.WaitGroup

	startMu sync.Mutex
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc

	statusMu sync.RWMutex
	status   Status
}

// New validates the schedule and builds a Refresher.
func New(job Job, cfg Config, logger *slog.Logger, recorder *metrics.Recorder) (*Refresher, error) {
	if job == nil {
		return nil, errors.New("refresher: nil job")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	r := &Refresher{job: job, cfg: cfg, logger: logger, metrics: recorder}

	cronLog := cronLogger{logger: logger}
	r.cron = cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog)))
	if _, err := r.cron.AddFunc(cfg.Schedule, r.runScheduled); err != nil {
		return nil, fmt.Errorf("refresher: invalid schedule %q: %w", cfg.Schedule, err)
	}
	return r, nil
}

// Start begins the schedule. Cycles use a context derived from ctx.
func (r *Refresher) Start(ctx context.Context) {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.baseCtx, r.cancel = context.WithCancel(ctx)

	r.cron.Start()
	logging.Info(r.logger, "refresher started", "schedule", r.cfg.Schedule)
	if r.cfg.WarmOnStart {
		r.warm.Add(1)
		go func() {
			defer r.warm.Done()
			r.runScheduled()
		}()
	}
}

// Stop halts the schedule and waits for running cycles, including the warm-up
// cycle launched by Start, or ctx.
func (r *Refresher) Stop(ctx context.Context) error {
	r.startMu.Lock()
	if !r.started {
		r.startMu.Unlock()
		return nil
	}
	r.started = false
	cancel := r.cancel
	r.startMu.Unlock()

	cronDone := r.cron.Stop()
	cancel()
	stopped := make(chan struct{})
	go func() {
		<-cronDone.Done()
		r.warm.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		logging.Info(r.logger, "refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger runs a forced cycle now and waits for it.
func (r *Refresher) Trigger(ctx context.Context) (string, error) {
	return r.run(ctx, true)
}

// Status returns a copy of the loop's recent health.
func (r *Refresher) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}

func (r *Refresher) runScheduled() {
	r.startMu.Lock()
	ctx := r.baseCtx
	r.startMu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := r.run(ctx, false); errors.Is(err, ErrAlreadyRunning) {
		logging.Warn(r.logger, "refresh skipped, previous cycle still running")
	}
}

func (r *Refresher) run(ctx context.Context, force bool) (string, error) {
	if !r.running.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}
	defer r.running.Store(false)

	runID := uuid.NewString()
	log := logging.With(r.logger, logging.FieldRunID, runID)
	ctx, cancel := context.WithTimeout(logging.WithLogger(ctx, log), r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	r.recordAttempt(runID, start)
	logging.Info(log, "refresh started", "force", force)

	err := r.job(ctx, force)
	duration := time.Since(start)
	r.metrics.RecordRefreshCycle(duration, err)
	if err != nil {
		logging.Error(log, "refresh failed", err, logging.FieldDurationMS, duration.Milliseconds())
		r.recordFailure(err)
		return runID, err
	}
	r.recordSuccess(start)
	logging.Info(log, "refresh complete", logging.FieldDurationMS, duration.Milliseconds())
	return runID, nil
}

func (r *Refresher) recordAttempt(runID string, at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.LastAttempt = at
	r.status.LastRunID = runID
}

func (r *Refresher) recordSuccess(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures = 0
	r.status.LastError = ""
	r.status.LastSuccess = at
}

func (r *Refresher) recordFailure(err error) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures++
	r.status.LastError = err.Error()
}

// cronLogger routes cron's own messages through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug(l.logger, "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error(l.logger, "cron: "+msg, err, keysAndValues...)
}
