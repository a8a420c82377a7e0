// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package export writes task results and workflow exports to disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/tadafuq/workflow-builder/pkg/types"
)

// Format selects the workflow export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name, defaulting to JSON when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json or yaml)", s)
	}
}

// SaveTaskResult writes the full task record to
// resultsDir/<id>_<type>.json and returns the path.
func SaveTaskResult(resultsDir string, t *types.Task) (string, error) {
	if resultsDir == "" {
		resultsDir = "results"
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	path := filepath.Join(resultsDir, fmt.Sprintf("%s_%s.json", t.ID, t.Type))
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding task %s: %w", t.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriteWorkflow writes a workflow export. When outPath is empty the file is
// named <workflow>_results.<format> under resultsDir. Returns the path written.
func WriteWorkflow(resultsDir, outPath string, exp *types.WorkflowExport, format Format) (string, error) {
	if resultsDir == "" {
		resultsDir = "results"
	}

	var data []byte
	var err error
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(exp)
	default:
		data, err = json.MarshalIndent(exp, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("encoding workflow %q: %w", exp.WorkflowName, err)
	}

	if outPath == "" {
		outPath = filepath.Join(resultsDir, fmt.Sprintf("%s_results.%s", exp.WorkflowName, format))
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}
