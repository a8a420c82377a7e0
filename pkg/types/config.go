// Copyright Tadafuq Labs, 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "workflow-builder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the chat-completion backend.
type AIConfig struct {
	// Model is the AI model identifier (default "gpt-3.5-turbo").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. When empty the
	// openai-api-key secret is used.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length (default 2000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for persistence and result files.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ResultsDir is the directory for per-task result files (default "results").
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxFileSize caps the size of analyzed data files in bytes (default 10 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`
}

// ExecutionConfig holds settings for the task engine.
type ExecutionConfig struct {
	// MaxConcurrent bounds parallel task execution in run-all (default 5).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// TaskTimeout bounds the run time of a single task (default 5m).
	TaskTimeout time.Duration `json:"task_timeout" yaml:"task_timeout"`
}

// ServerConfig holds settings for the dashboard HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// RateLimit is the allowed requests per minute per client IP (default 120).
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the zerolog level name: debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	AI        AIConfig        `json:"ai" yaml:"ai"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Log       LogConfig       `json:"log" yaml:"log"`
}
