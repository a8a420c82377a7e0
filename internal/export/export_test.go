// Copyright Tadafuq Labs, 2026. All rights reserved.

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/tadafuq/workflow-builder/pkg/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr != (err != nil) {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveTaskResult(t *testing.T) {
	dir := t.TempDir()
	task := &types.Task{
		ID:        "task_0_101500",
		Type:      types.TaskTranslation,
		Title:     "translate greeting",
		Input:     types.TaskInput{"text": "hello"},
		Output:    json.RawMessage(`{"translated_text":"مرحبا"}`),
		Status:    types.StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}

	path, err := SaveTaskResult(dir, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(dir, "task_0_101500_translation.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got types.Task
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("result file is not valid JSON: %v", err)
	}
	if got.ID != task.ID || got.Status != types.StatusCompleted {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestWriteWorkflowJSON(t *testing.T) {
	dir := t.TempDir()
	exp := &types.WorkflowExport{
		WorkflowName:  "content_workflow",
		ExecutionDate: time.Now().UTC(),
		Tasks:         []types.Task{{ID: "task_0_1", Type: types.TaskContentWriting, Input: types.TaskInput{}}},
	}

	path, err := WriteWorkflow(dir, "", exp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "content_workflow_results.json") {
		t.Errorf("unexpected path %q", path)
	}

	data, _ := os.ReadFile(path)
	var got types.WorkflowExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got.WorkflowName != "content_workflow" || len(got.Tasks) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestWriteWorkflowYAMLToExplicitPath(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "export.yaml")
	exp := &types.WorkflowExport{WorkflowName: "w", ExecutionDate: time.Now().UTC()}

	path, err := WriteWorkflow(dir, out, exp, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != out {
		t.Errorf("path = %q, want %q", path, out)
	}

	data, _ := os.ReadFile(path)
	var got types.WorkflowExport
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if got.WorkflowName != "w" {
		t.Errorf("workflow_name = %q", got.WorkflowName)
	}
}
