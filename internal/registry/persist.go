package registry

import (
	"context"
	"sync"

	"github.com/Schmarni-Dev/project-trc/internal/observability"
)

// persistJob is one queued store write.
type persistJob struct {
	what string
	fn   func(ctx context.Context) error
}

// pendingWrites tracks queued writes and detached reads so Flush can wait
// for them.
type pendingWrites struct {
	wg sync.WaitGroup
}

func (p *pendingWrites) wait() {
	p.wg.Wait()
}

// persist queues a store write. A single writer goroutine applies writes
// strictly in issue order, so a stalled earlier write can never land after a
// newer write to the same row. Failures are logged and counted; they never
// roll back in-memory state or reach the routing path.
func (r *Registry) persist(what string, fn func(ctx context.Context) error) {
	r.pending.wg.Add(1)
	r.writes <- persistJob{what: what, fn: fn}
}

// writeLoop drains the write queue until ctx is cancelled, then finishes
// whatever is already queued.
func (r *Registry) writeLoop(ctx context.Context) {
	for {
		select {
		case job := <-r.writes:
			r.runWrite(job)
		case <-ctx.Done():
			for {
				select {
				case job := <-r.writes:
					r.runWrite(job)
				default:
					return
				}
			}
		}
	}
}

func (r *Registry) runWrite(job persistJob) {
	defer r.pending.wg.Done()
	ctx, cancel := storeCtx()
	defer cancel()
	if err := job.fn(ctx); err != nil {
		observability.RecordPersistenceFailure()
		r.logger.Error().Err(err).Str("write", job.what).Msg("persistence write failed")
	}
}
