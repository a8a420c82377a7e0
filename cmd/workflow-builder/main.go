// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package main is the entry point for the workflow-builder CLI: task and
// workflow management, execution against the AI backend, and the dashboard
// API server.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tadafuq/workflow-builder/internal/ai"
	"github.com/tadafuq/workflow-builder/internal/engine"
	"github.com/tadafuq/workflow-builder/internal/logging"
	"github.com/tadafuq/workflow-builder/internal/secrets"
	"github.com/tadafuq/workflow-builder/internal/store"
	"github.com/tadafuq/workflow-builder/internal/task"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the workflow-builder CLI.
var rootCmd = &cobra.Command{
	Use:   "workflow-builder",
	Short: "AI task automation: build and run typed AI workflows",
	Long: `workflow-builder automates AI tasks: content writing, data analysis,
text summarization, email generation, translation, and code generation.

Tasks are created individually or grouped into named workflows, executed
against a chat-completion API, and persisted in a local SQLite database.
Results are written to per-task JSON files and can be exported per workflow.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s

		logging.Configure(logging.Config{Level: viper.GetString("log.level")})
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./workflow-builder.yaml or ~/.config/workflow-builder/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("workflow-builder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "workflow-builder"))
		}
	}

	viper.SetEnvPrefix("WORKFLOW_BUILDER")
	viper.AutomaticEnv()

	viper.SetDefault("ai.model", "gpt-3.5-turbo")
	viper.SetDefault("ai.max_tokens", 2000)
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("http.timeout", 60*time.Second)
	viper.SetDefault("http.user_agent", "workflow-builder/"+version)
	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("store.results_dir", "results")
	viper.SetDefault("store.max_file_size", 10<<20)
	viper.SetDefault("execution.max_concurrent", 5)
	viper.SetDefault("execution.task_timeout", 5*time.Minute)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.rate_limit", 120)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the full configuration from viper.
func appConfig() types.AppConfig {
	cfg := types.AppConfig{
		AI: types.AIConfig{
			Model:       viper.GetString("ai.model"),
			APIKey:      viper.GetString("ai.api_key"),
			MaxTokens:   viper.GetInt("ai.max_tokens"),
			Temperature: viper.GetFloat64("ai.temperature"),
			MaxRetries:  viper.GetInt("ai.max_retries"),
		},
		HTTP: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Store: types.StoreConfig{
			DataDir:     viper.GetString("store.data_dir"),
			ResultsDir:  viper.GetString("store.results_dir"),
			MaxFileSize: viper.GetInt64("store.max_file_size"),
		},
		Execution: types.ExecutionConfig{
			MaxConcurrent: viper.GetInt("execution.max_concurrent"),
			TaskTimeout:   viper.GetDuration("execution.task_timeout"),
		},
		Server: types.ServerConfig{
			Addr:      viper.GetString("server.addr"),
			RateLimit: viper.GetInt("server.rate_limit"),
		},
		Log: types.LogConfig{Level: viper.GetString("log.level")},
	}

	if cfg.AI.APIKey == "" {
		if v, ok := loadedSecrets["openai-api-key"]; ok {
			cfg.AI.APIKey = v
		}
	}
	return cfg
}

// openStore opens the SQLite store from configuration.
func openStore(cfg types.AppConfig) (*store.Store, error) {
	return store.Open(cfg.Store)
}

// buildEngine wires backend, registry, and store into an engine.
func buildEngine(cfg types.AppConfig, st *store.Store) *engine.Engine {
	backend := ai.NewOpenAIBackend(cfg.AI, cfg.HTTP)
	reg := task.NewRegistry(backend, cfg.AI, cfg.Store)
	return engine.New(st, reg, cfg.Execution, cfg.Store.ResultsDir, logging.Base())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
