package extraction

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Result reports the outcome of one background extraction run.
type Result struct {
	CreatorID string
	BriefID   string
	Err       error
	Duration  time.Duration
}

// Runner executes extraction runs in the background with observable
// completion. Callers enqueue a brief and either ignore the outcome (the
// runner logs it) or consume Results for synchronization, as the batch
// command and the tests do.
type Runner struct {
	orc     *Orchestrator
	results chan Result

	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewRunner creates a runner whose results channel buffers up to size
// outcomes. When the buffer is full, further outcomes are logged and dropped
// rather than blocking extraction goroutines.
func NewRunner(orc *Orchestrator, size int) *Runner {
	if size <= 0 {
		size = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		orc:     orc,
		results: make(chan Result, size),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue starts an extraction run for the brief in the background. The run
// uses the runner's own context so it survives the enqueueing request.
func (r *Runner) Enqueue(creatorID, briefID string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		zap.L().Warn("extraction enqueue after shutdown",
			zap.String("brief_id", briefID),
		)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		start := time.Now()
		err := r.orc.Run(r.ctx, creatorID, briefID)
		res := Result{
			CreatorID: creatorID,
			BriefID:   briefID,
			Err:       err,
			Duration:  time.Since(start),
		}

		if err != nil {
			zap.L().Error("background extraction failed",
				zap.String("creator_id", creatorID),
				zap.String("brief_id", briefID),
				zap.Error(err),
			)
		}

		select {
		case r.results <- res:
		default:
			zap.L().Warn("extraction result dropped, buffer full",
				zap.String("brief_id", briefID),
			)
		}
	}()
}

// Results exposes run outcomes in completion order.
func (r *Runner) Results() <-chan Result {
	return r.results
}

// Shutdown cancels in-flight runs, waits for them to finish, and closes the
// results channel.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	close(r.results)
}
