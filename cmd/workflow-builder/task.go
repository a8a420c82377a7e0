// Copyright Tadafuq Labs, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tadafuq/workflow-builder/pkg/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, inspect, and run individual tasks",
}

// --- create subcommand ---

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long: `Create registers a task of the given type. Type-specific inputs come
from a JSON file passed with --input; for example content_writing reads
"prompt", "content_type", and "language" keys.

With --run the task executes immediately after creation.`,
	RunE: runTaskCreate,
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	taskType, _ := cmd.Flags().GetString("type")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	inputFile, _ := cmd.Flags().GetString("input")
	runNow, _ := cmd.Flags().GetBool("run")

	if !types.ValidTaskTypes[types.TaskType(taskType)] {
		return fmt.Errorf("invalid task type %q (valid: %s)", taskType, strings.Join(taskTypeNames(), ", "))
	}

	input := types.TaskInput{}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}
		if err := json.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("parsing input file %s: %w", inputFile, err)
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
	id, err := st.NextTaskID(ctx, now)
	if err != nil {
		return err
	}

	t := &types.Task{
		ID:          id,
		Type:        types.TaskType(taskType),
		Title:       title,
		Description: description,
		Input:       input,
		Status:      types.StatusPending,
		CreatedAt:   now,
	}
	if err := st.CreateTask(ctx, t); err != nil {
		return err
	}
	fmt.Printf("Created task %s\n", id)

	if runNow {
		e := buildEngine(cfg, st)
		if _, err := e.RunTask(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Completed task %s\n", id)
	}
	return nil
}

// --- list subcommand ---

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with their status",
	RunE:  runTaskList,
}

func runTaskList(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	statusFilter, _ := cmd.Flags().GetString("status")
	tasks, err := st.ListTasks(context.Background(), types.TaskStatus(statusFilter))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-18s  %-20s  %-30s  %-10s  %s\n",
		"ID", "Type", "Title", "Status", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))

	for _, t := range tasks {
		title := t.Title
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-18s  %-20s  %-30s  %-10s  %s\n",
			t.ID, t.Type, title, colorStatus(t.Status), t.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// colorStatus renders a task status with the color used across the CLI.
func colorStatus(s types.TaskStatus) string {
	switch s {
	case types.StatusCompleted:
		return color.GreenString(string(s))
	case types.StatusFailed:
		return color.RedString(string(s))
	case types.StatusRunning:
		return color.CyanString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

// --- show subcommand ---

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task record with its output",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	t, err := st.GetTask(context.Background(), args[0])
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Printf("Saved task record to %s\n", outPath)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

// --- run subcommands ---

var taskRunCmd = &cobra.Command{
	Use:   "run [task-id]",
	Short: "Execute one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		e := buildEngine(cfg, st)
		done, err := e.RunTask(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Task %s %s\n", done.ID, colorStatus(done.Status))
		return nil
	},
}

var taskRunAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Execute all pending tasks with bounded concurrency",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		e := buildEngine(cfg, st)
		summary, err := e.RunPending(context.Background())
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

func taskTypeNames() []string {
	names := make([]string, 0, len(types.ValidTaskTypes))
	for t := range types.ValidTaskTypes {
		names = append(names, string(t))
	}
	return names
}

func init() {
	taskCreateCmd.Flags().String("type", "", "task type (content_writing, data_analysis, text_summarization, email_generation, translation, code_generation)")
	taskCreateCmd.Flags().String("title", "", "task title")
	taskCreateCmd.Flags().String("description", "", "task description")
	taskCreateCmd.Flags().String("input", "", "path to a JSON file with type-specific inputs")
	taskCreateCmd.Flags().Bool("run", false, "execute the task immediately")
	taskCreateCmd.MarkFlagRequired("type")
	taskCreateCmd.MarkFlagRequired("title")

	taskListCmd.Flags().Bool("json", false, "output as JSON")
	taskListCmd.Flags().String("status", "", "filter by status (pending, running, completed, failed)")

	taskShowCmd.Flags().String("output", "", "write the task record to a file instead of stdout")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskRunCmd)
	taskCmd.AddCommand(taskRunAllCmd)
	rootCmd.AddCommand(taskCmd)
}
