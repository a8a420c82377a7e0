// Copyright Tadafuq Labs, 2026. All rights reserved.

package types

import "time"

// Workflow is a named, ordered list of task IDs executed as a unit.
type Workflow struct {
	Name      string    `json:"name" yaml:"name"`
	TaskIDs   []string  `json:"task_ids" yaml:"task_ids"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// WorkflowSpec is the on-disk workflow definition format (YAML or JSON):
// a name plus inline task definitions, registered together on create.
type WorkflowSpec struct {
	Name  string     `json:"name" yaml:"name"`
	Tasks []TaskSpec `json:"tasks" yaml:"tasks"`
}

// TaskSpec is one task definition inside a WorkflowSpec.
type TaskSpec struct {
	Type        TaskType  `json:"type" yaml:"type"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Input       TaskInput `json:"input_data" yaml:"input_data"`
}

// WorkflowExport is the exported record of a workflow and its tasks.
type WorkflowExport struct {
	WorkflowName  string    `json:"workflow_name" yaml:"workflow_name"`
	ExecutionDate time.Time `json:"execution_date" yaml:"execution_date"`
	Tasks         []Task    `json:"tasks" yaml:"tasks"`
}
