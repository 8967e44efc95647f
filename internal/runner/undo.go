package runner

import (
	"context"

	"github.com/alexisbeaulieu97/reactor/internal/middleware"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

// maxUndoAttempts bounds the retry budget for a single undo entry before it
// is collected as an UndoRetriesExceededError and the walk moves on.
const maxUndoAttempts = 5

// UndoEntry is the minimal shape the runner needs to invoke a step's undo:
// name, impl, the arguments it last ran with, its produced value, and the
// context it ran under.
type UndoEntry struct {
	StepName string
	StepRef  model.Ref
	Impl     model.Step
	Value    interface{}
	Args     map[string]interface{}
	Context  map[string]interface{}
}

// Walk rolls back entries newest-first (strict LIFO), invoking Undo on each
// undoable step with up to maxUndoAttempts attempts. Every failure is
// collected; none stop the walk.
func Walk(ctx context.Context, entries []UndoEntry, hooks middleware.Chain, reactorID string) *reactorerrors.Aggregate {
	agg := reactorerrors.NewAggregate()

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		undoer, ok := entry.Impl.(model.Undoer)
		if !ok {
			continue
		}

		hooks.Observe(middleware.StepEvent{Kind: middleware.UndoStart, ReactorID: reactorID, StepName: entry.StepName, StepRef: entry.StepRef})

		var lastErr error
		succeeded := false
		exhaustedRetries := false
		for attempt := 1; attempt <= maxUndoAttempts; attempt++ {
			result := undoer.Undo(ctx, entry.Value, entry.Args, entry.Context)
			switch result.Outcome {
			case model.UndoSucceeded:
				succeeded = true
			case model.UndoRetried:
				lastErr = result.RetryReason
				exhaustedRetries = attempt == maxUndoAttempts
				if !exhaustedRetries {
					continue
				}
			case model.UndoFailed:
				lastErr = result.Err
			}
			break
		}

		hooks.Observe(middleware.StepEvent{Kind: middleware.UndoStop, ReactorID: reactorID, StepName: entry.StepName, StepRef: entry.StepRef})

		if succeeded {
			continue
		}
		if exhaustedRetries {
			agg.Add(reactorerrors.NewUndoRetriesExceededError(entry.StepName, maxUndoAttempts, lastErr))
		} else {
			agg.Add(reactorerrors.NewUndoStepError(entry.StepName, lastErr))
		}
	}

	return agg
}
