// Package pipeline runs a bounded producer->worker fetch pipeline: a fixed
// pool of goroutines pulls jobs off a buffered channel, retries transient
// failures with backoff, and reports progress through a ProgressSink while
// a global failure threshold can cut the whole batch short.
package pipeline

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/sergeii/twintail/internal/twerrors"
)

// Job is one unit of fetch/transform/write work the pipeline drives to
// completion.
type Job struct {
	ID string
	Do func(ctx context.Context) error
}

// Result records the outcome of a single job.
type Result struct {
	JobID string
	Err   error
}

// Snapshot is the progress state handed to a ProgressSink after each job
// completes.
type Snapshot struct {
	Completed int
	Failed    int
	Total     int
}

// Summary is the final report handed to a ProgressSink once the batch
// finishes or is cancelled.
type Summary struct {
	Completed int
	Failed    int
	Total     int
	Cancelled bool
}

// ProgressSink receives progress updates over the lifetime of a batch.
type ProgressSink interface {
	Start(total int)
	Update(Snapshot)
	Finish(Summary)
}

// NopSink discards every update; useful for --quiet and for tests.
type NopSink struct{}

func (NopSink) Start(int)        {}
func (NopSink) Update(Snapshot)  {}
func (NopSink) Finish(Summary)   {}

// Config tunes a Run invocation.
type Config struct {
	Concurrency   int
	RetryBudget   int
	FailThreshold int // cancel the batch once this many jobs have failed; 0 disables
	Sink          ProgressSink
	Logger        *zerolog.Logger
	// Clock sources retry backoff delays. Defaults to the real clock;
	// tests inject clockwork.NewFakeClock to assert on retry timing
	// without actually sleeping.
	Clock clockwork.Clock
}

// Run drives jobs through a bounded worker pool sized by cfg.Concurrency,
// retrying a job's retryable (KindNetwork) failures up to cfg.RetryBudget
// times with exponential backoff, and returns once every job has either
// succeeded, failed, or ctx was cancelled. A version-mismatch failure, or
// reaching cfg.FailThreshold, cancels the rest of the batch.
func Run(ctx context.Context, jobs []Job, cfg Config) Summary {
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sink.Start(len(jobs))

	queue := make(chan Job, concurrency)
	results := make(chan Result, len(jobs))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var failed int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker(runCtx, &wg, queue, results, cfg.RetryBudget, logger, clock)
	}

	go func() {
		defer close(queue)
		for _, j := range jobs {
			select {
			case queue <- j:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var completed, failCount int
	for res := range results {
		if res.Err != nil {
			failCount++
			newFailed := atomic.AddInt64(&failed, 1)
			logger.Warn().Str("job", res.JobID).Err(res.Err).Msg("job failed")
			if twerrors.KindOf(res.Err) == twerrors.KindVersionMismatch {
				cancel()
			}
			if cfg.FailThreshold > 0 && int(newFailed) >= cfg.FailThreshold {
				cancel()
			}
		} else {
			completed++
		}
		sink.Update(Snapshot{Completed: completed, Failed: failCount, Total: len(jobs)})
	}

	summary := Summary{
		Completed: completed,
		Failed:    failCount,
		Total:     len(jobs),
		Cancelled: runCtx.Err() != nil,
	}
	sink.Finish(summary)
	return summary
}

func worker(
	ctx context.Context, wg *sync.WaitGroup, queue <-chan Job, results chan<- Result,
	retryBudget int, logger *zerolog.Logger, clock clockwork.Clock,
) {
	defer wg.Done()
	for job := range queue {
		results <- Result{JobID: job.ID, Err: runWithRetry(ctx, job, retryBudget, logger, clock)}
	}
}

func runWithRetry(ctx context.Context, job Job, retryBudget int, logger *zerolog.Logger, clock clockwork.Clock) error {
	var lastErr error
	for attempt := 0; attempt <= retryBudget; attempt++ {
		if ctx.Err() != nil {
			return twerrors.New(twerrors.KindCancelled, "pipeline.runWithRetry", ctx.Err())
		}
		err := job.Do(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
		if attempt < retryBudget {
			delay := backoff(attempt)
			logger.Debug().Str("job", job.ID).Int("attempt", attempt).Dur("delay", delay).Msg("retrying job")
			select {
			case <-clock.After(delay):
			case <-ctx.Done():
				return twerrors.New(twerrors.KindCancelled, "pipeline.runWithRetry", ctx.Err())
			}
		}
	}
	return lastErr
}

// isRetryable reports whether a job error is worth spending retry budget
// on. Only network-level failures (connection errors, 5xx responses, and
// the CDN's own hash-mismatch signal) are retryable; version mismatches,
// crypto failures, and codec failures are fatal on the first occurrence.
func isRetryable(err error) bool {
	return twerrors.KindOf(err) == twerrors.KindNetwork
}

// backoff grows exponentially from 100ms (100ms, 200ms, 400ms, ...) plus up
// to 25% random jitter; the delay itself is not capped.
func backoff(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt))) * 100 * time.Millisecond
	jitter := time.Duration(rand.Float64() * float64(base) * 0.25) // nolint: gosec
	return base + jitter
}
