// Copyright Tadafuq Labs, 2026. All rights reserved.

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tadafuq/workflow-builder/internal/ai"
	"github.com/tadafuq/workflow-builder/internal/store"
	"github.com/tadafuq/workflow-builder/internal/task"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

func TestMain(m *testing.M) {
	ai.BackoffBase = time.Millisecond
	os.Exit(m.Run())
}

// countingBackend records concurrent usage and optionally fails on a prompt
// substring.
type countingBackend struct {
	mu        sync.Mutex
	calls     int
	inFlight  int
	maxActive int
	failWhen  string
	response  string
	delay     time.Duration
}

func (b *countingBackend) Complete(_ context.Context, req ai.Request) (string, error) {
	b.mu.Lock()
	b.calls++
	b.inFlight++
	if b.inFlight > b.maxActive {
		b.maxActive = b.inFlight
	}
	fail := b.failWhen != "" && strings.Contains(req.User, b.failWhen)
	b.mu.Unlock()

	if b.delay > 0 {
		time.Sleep(b.delay)
	}

	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()

	if fail {
		return "", fmt.Errorf("backend refused")
	}
	return b.response, nil
}

func testEngine(t *testing.T, backend ai.ChatBackend, exec types.ExecutionConfig) (*Engine, *store.Store, string) {
	t.Helper()
	st, err := store.Open(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	resultsDir := t.TempDir()
	reg := task.NewRegistry(backend, types.AIConfig{Model: "test", MaxRetries: 0}, types.StoreConfig{})
	return New(st, reg, exec, resultsDir, zerolog.Nop()), st, resultsDir
}

func createTask(t *testing.T, st *store.Store, id string, taskType types.TaskType, in types.TaskInput) {
	t.Helper()
	err := st.CreateTask(context.Background(), &types.Task{
		ID:        id,
		Type:      taskType,
		Title:     "t " + id,
		Input:     in,
		Status:    types.StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunTaskSuccess(t *testing.T) {
	backend := &countingBackend{response: "generated text"}
	e, st, resultsDir := testEngine(t, backend, types.ExecutionConfig{})
	createTask(t, st, "task_0_100000", types.TaskContentWriting, types.TaskInput{"prompt": "write"})

	done, err := e.RunTask(context.Background(), "task_0_100000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != types.StatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	var res types.ContentResult
	if err := json.Unmarshal(done.Output, &res); err != nil {
		t.Fatalf("output is not a ContentResult: %v", err)
	}
	if res.Content != "generated text" {
		t.Errorf("content = %q", res.Content)
	}

	// Result file written as <id>_<type>.json.
	path := filepath.Join(resultsDir, "task_0_100000_content_writing.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("result file missing: %v", err)
	}
}

func TestRunTaskFailure(t *testing.T) {
	backend := &countingBackend{failWhen: "write", response: "x"}
	e, st, _ := testEngine(t, backend, types.ExecutionConfig{})
	createTask(t, st, "task_0_100000", types.TaskContentWriting, types.TaskInput{"prompt": "write"})

	failed, err := e.RunTask(context.Background(), "task_0_100000")
	if err == nil {
		t.Fatal("expected error")
	}
	if failed == nil || failed.Status != types.StatusFailed {
		t.Fatalf("task not marked failed: %+v", failed)
	}
	if failed.Error == "" {
		t.Error("failure message not recorded")
	}
}

func TestRunTaskUnknownID(t *testing.T) {
	e, _, _ := testEngine(t, &countingBackend{response: "x"}, types.ExecutionConfig{})
	if _, err := e.RunTask(context.Background(), "task_404_000000"); err == nil {
		t.Fatal("expected error for unknown task")
	}
}

func TestRunWorkflowContinuesPastFailures(t *testing.T) {
	backend := &countingBackend{failWhen: "bad", response: "ok"}
	e, st, _ := testEngine(t, backend, types.ExecutionConfig{})

	createTask(t, st, "task_0_100000", types.TaskContentWriting, types.TaskInput{"prompt": "good one"})
	createTask(t, st, "task_1_100001", types.TaskContentWriting, types.TaskInput{"prompt": "bad one"})
	createTask(t, st, "task_2_100002", types.TaskContentWriting, types.TaskInput{"prompt": "another good"})

	ctx := context.Background()
	ids := []string{"task_0_100000", "task_1_100001", "task_2_100002"}
	if err := st.CreateWorkflow(ctx, "mixed", ids, time.Now()); err != nil {
		t.Fatal(err)
	}

	summary, err := e.RunWorkflow(ctx, "mixed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Completed != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 2 completed / 1 failed", summary)
	}
	if summary.Total() != 3 {
		t.Errorf("total = %d, want 3", summary.Total())
	}
}

func TestRunWorkflowUnknownName(t *testing.T) {
	e, _, _ := testEngine(t, &countingBackend{response: "x"}, types.ExecutionConfig{})
	if _, err := e.RunWorkflow(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown workflow")
	}
}

func TestRunPendingBoundedConcurrency(t *testing.T) {
	backend := &countingBackend{response: "ok", delay: 20 * time.Millisecond}
	e, st, _ := testEngine(t, backend, types.ExecutionConfig{MaxConcurrent: 2})

	for i := 0; i < 6; i++ {
		createTask(t, st, fmt.Sprintf("task_%d_100000", i), types.TaskContentWriting,
			types.TaskInput{"prompt": fmt.Sprintf("p%d", i)})
	}

	summary, err := e.RunPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Completed != 6 {
		t.Errorf("completed = %d, want 6", summary.Completed)
	}
	if backend.maxActive > 2 {
		t.Errorf("max concurrent backend calls = %d, want <= 2", backend.maxActive)
	}
}

func TestRunPendingEmpty(t *testing.T) {
	e, _, _ := testEngine(t, &countingBackend{response: "x"}, types.ExecutionConfig{})
	summary, err := e.RunPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total() != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestExport(t *testing.T) {
	backend := &countingBackend{response: "ok"}
	e, st, _ := testEngine(t, backend, types.ExecutionConfig{})
	createTask(t, st, "task_0_100000", types.TaskContentWriting, types.TaskInput{"prompt": "p"})

	ctx := context.Background()
	if err := st.CreateWorkflow(ctx, "w", []string{"task_0_100000"}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RunWorkflow(ctx, "w"); err != nil {
		t.Fatal(err)
	}

	exp, err := e.Export(ctx, "w")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.WorkflowName != "w" || len(exp.Tasks) != 1 {
		t.Fatalf("unexpected export: %+v", exp)
	}
	if exp.Tasks[0].Status != types.StatusCompleted {
		t.Errorf("exported task status = %q", exp.Tasks[0].Status)
	}
}
