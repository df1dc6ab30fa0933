package engine

import (
	"context"
	"fmt"
	"time"
)

// runResult passes a run's outcome back from its goroutine.
type runResult struct {
	out *Output
	err error
}

// waitWithTimeout waits for a result from ch, but returns ErrTimeout if
// the run exceeds the engine timeout and the context error if ctx ends
// first. It uses the generation counter to discard stale results from
// previous runs.
//
// On timeout the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func (e *Engine) waitWithTimeout(ctx context.Context, ch <-chan runResult, gen uint64) (*Output, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		// Check if this result is still relevant (not stale).
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			return nil, ErrSuperseded
		}
		return res.out, res.err

	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
