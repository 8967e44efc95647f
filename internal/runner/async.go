package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/reactor/internal/middleware"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/plan"
	"github.com/alexisbeaulieu97/reactor/internal/pool"
)

// AsyncSupervisor tracks in-flight async tasks and collects their results.
// It is owned exclusively by the executor loop; results flow back over a
// single channel so the loop can poll with a bounded wait.
type AsyncSupervisor struct {
	poolKey pool.Key
	results chan StepResult
	running map[model.Ref]struct{}
}

// NewAsyncSupervisor creates a supervisor bound to poolKey.
func NewAsyncSupervisor(poolKey pool.Key) *AsyncSupervisor {
	return &AsyncSupervisor{
		poolKey: poolKey,
		results: make(chan StepResult, 64),
		running: make(map[model.Ref]struct{}),
	}
}

// Running reports whether ref currently has an in-flight task, so the
// executor can exclude it from the ready set without mutating the graph.
func (s *AsyncSupervisor) Running(ref model.Ref) bool {
	_, ok := s.running[ref]
	return ok
}

// InFlight reports how many tasks are currently running.
func (s *AsyncSupervisor) InFlight() int {
	return len(s.running)
}

// StartSteps acquires up to len(ready) pool slots and launches one detached
// task per granted slot. Each node's arguments and effective context are
// resolved here, synchronously, before its goroutine is spawned — this
// runs on the executor's single-threaded loop, so it is the last point
// reactorCtx/results can be read safely; the goroutine only ever touches
// the resolved snapshot, never the shared reactor state (§5). It returns
// how many tasks were actually started.
func (s *AsyncSupervisor) StartSteps(ctx context.Context, ready []*plan.Node, reactorCtx map[string]interface{},
	results map[string]interface{}, concurrencyKey string, retries map[model.Ref]int, hooks middleware.Chain, reactorID string) int {

	if len(ready) == 0 {
		return 0
	}
	granted := pool.Acquire(s.poolKey, len(ready))
	for i := 0; i < granted; i++ {
		node := ready[i]
		s.running[node.Ref] = struct{}{}
		retryCount := retries[node.Ref]

		args, baseCtx, err := PrepareStep(node, reactorCtx, results, concurrencyKey)
		if err != nil {
			s.results <- StepResult{Ref: node.Ref, Name: node.Name, Outcome: Failed, Err: err, Retries: retryCount}
			continue
		}

		go func(node *plan.Node, args, baseCtx map[string]interface{}, retryCount int) {
			// A task crash surfaces as a Failed outcome rather than
			// propagating a panic across the supervisor boundary.
			defer func() {
				if r := recover(); r != nil {
					s.results <- StepResult{Ref: node.Ref, Name: node.Name, Outcome: Failed, Err: panicError(r)}
				}
			}()
			result := RunStep(ctx, node, args, baseCtx, retryCount, hooks, reactorID)
			s.results <- result
		}(node, args, baseCtx, retryCount)
	}
	return granted
}

// CollectCompleted polls for completed tasks with a short bounded wait,
// returning every result available within that window as a single batch.
// It always releases the pool slot a finished task held.
func (s *AsyncSupervisor) CollectCompleted(window time.Duration) []StepResult {
	var batch []StepResult

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case result := <-s.results:
		batch = append(batch, s.finish(result))
	case <-timer.C:
		return batch
	}

	for {
		select {
		case result := <-s.results:
			batch = append(batch, s.finish(result))
		default:
			return batch
		}
	}
}

func (s *AsyncSupervisor) finish(result StepResult) StepResult {
	delete(s.running, result.Ref)
	pool.Release(s.poolKey, 1)
	return result
}

// DrainOnShutdown waits up to haltTimeout for any still-running tasks to
// finish, discarding their results. Tasks still running after the deadline
// are abandoned; their undo status is unknown, so the caller must not add
// them to the undo stack.
func (s *AsyncSupervisor) DrainOnShutdown(haltTimeout time.Duration) (abandoned []model.Ref) {
	deadline := time.After(haltTimeout)
	for len(s.running) > 0 {
		select {
		case result := <-s.results:
			s.finish(result)
		case <-deadline:
			for ref := range s.running {
				abandoned = append(abandoned, ref)
			}
			return abandoned
		}
	}
	return nil
}

type panicErr struct{ value interface{} }

func (p panicErr) Error() string { return fmt.Sprintf("task panicked: %v", p.value) }

func panicError(v interface{}) error { return panicErr{value: v} }
