// Copyright Tadafuq Labs, 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// TaskType categorizes a task by the kind of work the AI performs.
type TaskType string

const (
	TaskContentWriting    TaskType = "content_writing"
	TaskDataAnalysis      TaskType = "data_analysis"
	TaskTextSummarization TaskType = "text_summarization"
	TaskEmailGeneration   TaskType = "email_generation"
	TaskTranslation       TaskType = "translation"
	TaskCodeGeneration    TaskType = "code_generation"
)

// ValidTaskTypes is the set of accepted TaskType values.
var ValidTaskTypes = map[TaskType]bool{
	TaskContentWriting:    true,
	TaskDataAnalysis:      true,
	TaskTextSummarization: true,
	TaskEmailGeneration:   true,
	TaskTranslation:       true,
	TaskCodeGeneration:    true,
}

// TaskStatus tracks a task through its execution lifecycle.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// TaskInput is the free-form input object for a task. Keys depend on the
// task type; handlers read what they need and fall back to defaults.
type TaskInput map[string]any

// String returns the string value for key, or fallback when the key is
// missing or not a string.
func (in TaskInput) String(key, fallback string) string {
	if v, ok := in[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Int returns the integer value for key, or fallback. JSON numbers decode
// as float64, so both forms are accepted.
func (in TaskInput) Int(key string, fallback int) int {
	switch v := in[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// Task is one unit of AI work with its inputs, outputs, and lifecycle state.
type Task struct {
	// ID has the form task_<n>_<HHMMSS>, assigned at creation.
	ID string `json:"id" yaml:"id"`

	// Type selects the handler that executes this task.
	Type TaskType `json:"type" yaml:"type"`

	// Title is a short human-readable name.
	Title string `json:"title" yaml:"title"`

	// Description explains what the task should accomplish.
	Description string `json:"description" yaml:"description"`

	// Input holds the type-specific input fields.
	Input TaskInput `json:"input_data" yaml:"input_data"`

	// Output holds the type-specific result, set after a successful run.
	Output json.RawMessage `json:"output_data,omitempty" yaml:"output_data,omitempty"`

	// Error records the failure message when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Status TaskStatus `json:"status" yaml:"status"`

	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// ContentResult is the output of a content_writing task.
type ContentResult struct {
	Content     string `json:"content" yaml:"content"`
	WordCount   int    `json:"word_count" yaml:"word_count"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Language    string `json:"language" yaml:"language"`
}

// SummaryResult is the output of a text_summarization task.
type SummaryResult struct {
	OriginalLength int `json:"original_length" yaml:"original_length"`

	Summary       string `json:"summary" yaml:"summary"`
	SummaryLength int    `json:"summary_length" yaml:"summary_length"`

	// CompressionRatio is summary words divided by original words,
	// 0 when the original text was empty.
	CompressionRatio float64 `json:"compression_ratio" yaml:"compression_ratio"`
}

// EmailResult is the output of an email_generation task.
type EmailResult struct {
	EmailContent string `json:"email_content" yaml:"email_content"`
	Purpose      string `json:"purpose" yaml:"purpose"`
	Tone         string `json:"tone" yaml:"tone"`
	Language     string `json:"language" yaml:"language"`
}

// TranslationResult is the output of a translation task.
type TranslationResult struct {
	OriginalText   string `json:"original_text" yaml:"original_text"`
	TranslatedText string `json:"translated_text" yaml:"translated_text"`
	SourceLanguage string `json:"source_language" yaml:"source_language"`
	TargetLanguage string `json:"target_language" yaml:"target_language"`
}

// CodeResult is the output of a code_generation task.
type CodeResult struct {
	Code                string `json:"code" yaml:"code"`
	ProgrammingLanguage string `json:"programming_language" yaml:"programming_language"`
	Description         string `json:"description" yaml:"description"`
}

// AnalysisResult is the output of a data_analysis task: a structural
// profile of the dataset plus AI-generated commentary.
type AnalysisResult struct {
	Rows    int      `json:"rows_count" yaml:"rows_count"`
	Columns int      `json:"columns_count" yaml:"columns_count"`
	Names   []string `json:"columns" yaml:"columns"`

	// Types maps column name to inferred type: number, string, bool, or empty.
	Types map[string]string `json:"data_types" yaml:"data_types"`

	// Missing maps column name to the count of empty or null cells.
	Missing map[string]int `json:"missing_values" yaml:"missing_values"`

	// Stats maps numeric column name to basic statistics.
	Stats map[string]ColumnStats `json:"basic_stats,omitempty" yaml:"basic_stats,omitempty"`

	AIInsights string `json:"ai_insights,omitempty" yaml:"ai_insights,omitempty"`
}

// ColumnStats holds basic statistics for one numeric column.
type ColumnStats struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std" yaml:"std"`
}
