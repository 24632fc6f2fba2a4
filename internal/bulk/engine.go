package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/warden/internal/domain"
)

// ErrBusy is returned when Run is called while a batch is still processing.
var ErrBusy = errors.New("bulk engine is already processing a batch")

// Hooks are the presentation callbacks for a batch.
type Hooks struct {
	// OnProgress fires once per item, in target order, after the item's
	// remote call settles.
	OnProgress func(Progress)

	// OnSuccess fires once after completion, only if no item failed.
	OnSuccess func()
}

// Engine applies one operation to a list of identities, one at a time.
//
// A batch moves Confirm -> Processing -> Complete. Once processing starts it
// always runs to completion: there is no cancellation, and a failed item is
// recorded and skipped rather than aborting the batch. The engine is not
// reentrant while processing.
type Engine struct {
	exec        Executor
	invalidator domain.Invalidator
	logger      *slog.Logger

	mu    sync.Mutex // guards state for concurrent Snapshot reads
	state Progress
}

// NewEngine creates an engine. invalidator may be nil when no cache is in use.
func NewEngine(exec Executor, invalidator domain.Invalidator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{exec: exec, invalidator: invalidator, logger: logger}
}

// Snapshot returns a copy of the current batch state.
func (e *Engine) Snapshot() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Dismiss closes the batch dialog. It is refused while processing; after
// completion it resets the engine to Confirm for the next batch.
func (e *Engine) Dismiss() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase == PhaseProcessing {
		return false
	}
	e.state = Progress{}
	return true
}

// Run processes every id in order and returns once the batch is complete.
// ids is copied before processing starts. Cancelling ctx does not stop the
// batch; it is only used for request-scoped values.
func (e *Engine) Run(ctx context.Context, op Operation, ids []string, hooks Hooks) (Outcome, error) {
	if !op.Valid() {
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownOperation, op)
	}

	targets := make([]string, len(ids))
	copy(targets, ids)

	e.mu.Lock()
	if e.state.Phase == PhaseProcessing {
		e.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	e.state = Progress{
		BatchID:   uuid.NewString(),
		Operation: op,
		Phase:     PhaseProcessing,
		Total:     len(targets),
	}
	batchID := e.state.BatchID
	e.mu.Unlock()

	// A panicking executor must not leave the engine stuck in Processing
	defer func() {
		e.mu.Lock()
		if e.state.Phase == PhaseProcessing {
			e.state.Phase = PhaseComplete
		}
		e.mu.Unlock()
	}()

	logger := e.logger.With("batchID", batchID, "operation", op.String())
	logger.Info("bulk operation started", "total", len(targets))

	runCtx := context.WithoutCancel(ctx)
	n := len(targets)

	for i, id := range targets {
		result := ItemResult{ID: id, Success: true}
		err := e.exec.Execute(runCtx, op, id)
		if err != nil {
			result = ItemResult{ID: id, ErrorMessage: err.Error()}
			logger.Warn("bulk item failed", "id", id, "error", err)
		} else {
			logger.Debug("bulk item succeeded", "id", id)
		}

		e.mu.Lock()
		if err != nil {
			e.state.Failed = append(e.state.Failed, Failure{ID: id, ErrorMessage: err.Error(), Err: err})
		} else {
			e.state.Succeeded++
		}
		e.state.Processed = i + 1
		e.state.Percent = float64(i+1) / float64(n) * 100
		e.state.Last = result
		progress := e.snapshotLocked()
		e.mu.Unlock()

		if hooks.OnProgress != nil {
			hooks.OnProgress(progress)
		}
	}

	e.mu.Lock()
	e.state.Phase = PhaseComplete
	e.state.Percent = 100
	outcome := Outcome{
		BatchID:         batchID,
		Operation:       op,
		Total:           n,
		Succeeded:       e.state.Succeeded,
		Failed:          copyFailures(e.state.Failed),
		ProgressPercent: e.state.Percent,
	}
	e.mu.Unlock()

	if e.invalidator != nil {
		for _, region := range op.Regions() {
			e.invalidator.Invalidate(region)
		}
	}

	logger.Info("bulk operation complete", "succeeded", outcome.Succeeded, "failed", len(outcome.Failed))

	if outcome.OK() && hooks.OnSuccess != nil {
		hooks.OnSuccess()
	}
	return outcome, nil
}

func (e *Engine) snapshotLocked() Progress {
	p := e.state
	p.Failed = copyFailures(e.state.Failed)
	return p
}
