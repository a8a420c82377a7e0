// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package engine drives task and workflow execution: status transitions,
// result persistence, and run history.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tadafuq/workflow-builder/internal/export"
	"github.com/tadafuq/workflow-builder/internal/store"
	"github.com/tadafuq/workflow-builder/internal/task"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

// Engine executes tasks through the handler registry and records outcomes.
type Engine struct {
	Store    *store.Store
	Registry *task.Registry
	Exec     types.ExecutionConfig
	Results  string // results directory for per-task files
	Log      zerolog.Logger
}

// New builds an Engine.
func New(st *store.Store, reg *task.Registry, exec types.ExecutionConfig, resultsDir string, log zerolog.Logger) *Engine {
	return &Engine{Store: st, Registry: reg, Exec: exec, Results: resultsDir, Log: log}
}

// RunSummary holds counts from a multi-task run.
type RunSummary struct {
	Completed int
	Failed    int
}

// Total returns the number of tasks processed.
func (s RunSummary) Total() int { return s.Completed + s.Failed }

// RunTask executes one task end to end: marks it running, dispatches the
// handler, stores the output or failure, and writes the result file.
// The returned task reflects the final state.
func (e *Engine) RunTask(ctx context.Context, id string) (*types.Task, error) {
	t, err := e.Store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := e.Store.MarkRunning(ctx, id); err != nil {
		return nil, err
	}
	e.Log.Info().Str("task", id).Str("type", string(t.Type)).Str("title", t.Title).Msg("task started")

	runCtx := ctx
	if e.Exec.TaskTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Exec.TaskTimeout)
		defer cancel()
	}

	started := time.Now()
	result, execErr := e.Registry.Execute(runCtx, t)
	finished := time.Now()

	if execErr != nil {
		if err := e.Store.MarkFailed(ctx, id, execErr.Error()); err != nil {
			e.Log.Error().Err(err).Str("task", id).Msg("recording failure")
		}
		e.recordRun(ctx, "task", id, started, finished, 0, 1)
		e.Log.Error().Err(execErr).Str("task", id).Msg("task failed")
		failed, _ := e.Store.GetTask(ctx, id)
		return failed, fmt.Errorf("task %s: %w", id, execErr)
	}

	output, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result for task %s: %w", id, err)
	}
	if err := e.Store.MarkCompleted(ctx, id, output, finished); err != nil {
		return nil, err
	}
	e.recordRun(ctx, "task", id, started, finished, 1, 0)

	done, err := e.Store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if path, err := export.SaveTaskResult(e.Results, done); err != nil {
		e.Log.Warn().Err(err).Str("task", id).Msg("writing result file")
	} else {
		e.Log.Debug().Str("task", id).Str("path", path).Msg("result file written")
	}

	e.Log.Info().Str("task", id).Dur("elapsed", finished.Sub(started)).Msg("task completed")
	return done, nil
}

// RunWorkflow executes a workflow's tasks sequentially in definition order.
// A failed task is recorded and execution continues with the next one.
func (e *Engine) RunWorkflow(ctx context.Context, name string) (RunSummary, error) {
	w, err := e.Store.GetWorkflow(ctx, name)
	if err != nil {
		return RunSummary{}, err
	}

	e.Log.Info().Str("workflow", name).Int("tasks", len(w.TaskIDs)).Msg("workflow started")
	started := time.Now()

	var summary RunSummary
	for _, id := range w.TaskIDs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if _, err := e.RunTask(ctx, id); err != nil {
			summary.Failed++
			continue
		}
		summary.Completed++
	}

	finished := time.Now()
	e.recordRun(ctx, "workflow", name, started, finished, summary.Completed, summary.Failed)
	e.Log.Info().Str("workflow", name).
		Int("completed", summary.Completed).
		Int("failed", summary.Failed).
		Msg("workflow finished")
	return summary, nil
}

// RunPending executes every pending task with bounded concurrency. Tasks in
// a run-all batch have no ordering constraint between them.
func (e *Engine) RunPending(ctx context.Context) (RunSummary, error) {
	pending, err := e.Store.ListTasks(ctx, types.StatusPending)
	if err != nil {
		return RunSummary{}, err
	}
	if len(pending) == 0 {
		return RunSummary{}, nil
	}

	limit := e.Exec.MaxConcurrent
	if limit <= 0 {
		limit = 5
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]bool, len(pending))
	for i, t := range pending {
		i, t := i, t
		g.Go(func() error {
			_, err := e.RunTask(gctx, t.ID)
			results[i] = err == nil
			// Task failures are recorded per task; only cancellation
			// aborts the batch.
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	err = g.Wait()

	var summary RunSummary
	for _, ok := range results {
		if ok {
			summary.Completed++
		} else {
			summary.Failed++
		}
	}
	return summary, err
}

func (e *Engine) recordRun(ctx context.Context, kind, name string, started, finished time.Time, completed, failed int) {
	if err := e.Store.RecordRun(ctx, kind, name, started, finished, completed, failed); err != nil {
		e.Log.Warn().Err(err).Str(kind, name).Msg("recording run history")
	}
}

// Export assembles the full export record for a workflow.
func (e *Engine) Export(ctx context.Context, name string) (*types.WorkflowExport, error) {
	w, err := e.Store.GetWorkflow(ctx, name)
	if err != nil {
		return nil, err
	}

	exp := &types.WorkflowExport{
		WorkflowName:  name,
		ExecutionDate: time.Now().UTC(),
	}
	for _, id := range w.TaskIDs {
		t, err := e.Store.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		exp.Tasks = append(exp.Tasks, *t)
	}
	return exp, nil
}
