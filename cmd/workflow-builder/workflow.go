// Copyright Tadafuq Labs, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/tadafuq/workflow-builder/internal/export"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Define, run, and export multi-task workflows",
}

// --- create subcommand ---

var workflowCreateCmd = &cobra.Command{
	Use:   "create [spec-file]",
	Short: "Register a workflow from a YAML or JSON definition",
	Long: `Create reads a workflow definition, registers each task it declares,
and records the workflow as the ordered list of those tasks. The file
format is chosen by extension (.yaml, .yml, or .json):

    name: daily_digest
    tasks:
      - type: text_summarization
        title: Summarize report
        input_data:
          text: "..."
          max_words: 100

With --run the workflow executes immediately after registration.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowCreate,
}

func runWorkflowCreate(cmd *cobra.Command, args []string) error {
	spec, err := readWorkflowSpec(args[0])
	if err != nil {
		return err
	}
	if spec.Name == "" {
		return fmt.Errorf("workflow definition %s has no name", args[0])
	}
	if len(spec.Tasks) == 0 {
		return fmt.Errorf("workflow %q defines no tasks", spec.Name)
	}
	for i, ts := range spec.Tasks {
		if !types.ValidTaskTypes[ts.Type] {
			return fmt.Errorf("task %d: invalid type %q", i, ts.Type)
		}
		if ts.Title == "" {
			return fmt.Errorf("task %d: title is required", i)
		}
	}

	cfg := appConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	ids := make([]string, 0, len(spec.Tasks))
	for _, ts := range spec.Tasks {
		id, err := st.NextTaskID(ctx, now)
		if err != nil {
			return err
		}
		input := ts.Input
		if input == nil {
			input = types.TaskInput{}
		}
		t := &types.Task{
			ID:          id,
			Type:        ts.Type,
			Title:       ts.Title,
			Description: ts.Description,
			Input:       input,
			Status:      types.StatusPending,
			CreatedAt:   now,
		}
		if err := st.CreateTask(ctx, t); err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if err := st.CreateWorkflow(ctx, spec.Name, ids, now); err != nil {
		return err
	}
	fmt.Printf("Created workflow %q with %d task(s)\n", spec.Name, len(ids))

	runNow, _ := cmd.Flags().GetBool("run")
	if runNow {
		e := buildEngine(cfg, st)
		summary, err := e.RunWorkflow(ctx, spec.Name)
		if err != nil {
			return err
		}
		fmt.Printf("completed: %d, failed: %d\n", summary.Completed, summary.Failed)
	}
	return nil
}

// readWorkflowSpec parses a workflow definition file by extension.
func readWorkflowSpec(path string) (*types.WorkflowSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow definition: %w", err)
	}

	var spec types.WorkflowSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported definition format %q (want .yaml, .yml, or .json)", filepath.Ext(path))
	}
	return &spec, nil
}

// --- list subcommand ---

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ws, err := st.ListWorkflows(context.Background())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ws)
		}

		if len(ws) == 0 {
			fmt.Println("No workflows.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-30s  %-6s  %s\n", "Name", "Tasks", "Created")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 55))
		for _, w := range ws {
			fmt.Fprintf(os.Stdout, "%-30s  %-6d  %s\n",
				w.Name, len(w.TaskIDs), w.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

// --- run subcommand ---

var workflowRunCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Execute a workflow's tasks in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		e := buildEngine(cfg, st)
		summary, err := e.RunWorkflow(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("completed: %d, failed: %d\n", summary.Completed, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d task(s) failed", summary.Failed)
		}
		return nil
	},
}

// --- export subcommand ---

var workflowExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Export a workflow and its task results to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		cfg := appConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		e := buildEngine(cfg, st)
		exp, err := e.Export(context.Background(), args[0])
		if err != nil {
			return err
		}

		outPath, _ := cmd.Flags().GetString("output")
		path, err := export.WriteWorkflow(cfg.Store.ResultsDir, outPath, exp, format)
		if err != nil {
			return err
		}
		fmt.Printf("Exported workflow %q to %s\n", args[0], path)
		return nil
	},
}

func init() {
	workflowCreateCmd.Flags().Bool("run", false, "execute the workflow immediately")

	workflowListCmd.Flags().Bool("json", false, "output as JSON")

	workflowExportCmd.Flags().String("format", "json", "export format (json or yaml)")
	workflowExportCmd.Flags().String("output", "", "output file path (default: <results-dir>/<name>_results.<format>)")

	workflowCmd.AddCommand(workflowCreateCmd)
	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowRunCmd)
	workflowCmd.AddCommand(workflowExportCmd)
	rootCmd.AddCommand(workflowCmd)
}
