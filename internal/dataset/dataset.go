// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package dataset profiles tabular data files for the data_analysis task.
// It supports CSV (header row required) and JSON arrays of flat objects.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tadafuq/workflow-builder/pkg/types"
)

// DefaultMaxFileSize caps analyzed files at 10 MiB unless configured otherwise.
const DefaultMaxFileSize = 10 << 20

// Profile describes the structure and contents of a dataset.
type Profile struct {
	Rows    int
	Columns []string
	Types   map[string]string
	Missing map[string]int
	Stats   map[string]types.ColumnStats
}

// Load reads and profiles the data file at path. The extension selects the
// parser: .csv or .json. Other extensions are an error.
func Load(path string, maxFileSize int64) (*Profile, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("data file not found: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("data file %s exceeds size limit (%d > %d bytes)", path, info.Size(), maxFileSize)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported data file format %q (want .csv or .json)", filepath.Ext(path))
	}
}

func loadCSV(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV %s is empty", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return profile(header, rows), nil
}

func loadJSON(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("parsing JSON %s (want an array of objects): %w", path, err)
	}

	// Collect the union of keys for a stable column set.
	colSet := make(map[string]bool)
	for _, obj := range objects {
		for k := range obj {
			colSet[k] = true
		}
	}
	columns := make([]string, 0, len(colSet))
	for k := range colSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([]map[string]string, 0, len(objects))
	for _, obj := range objects {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			v, ok := obj[col]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case string:
				row[col] = t
			case float64:
				row[col] = strconv.FormatFloat(t, 'g', -1, 64)
			case bool:
				row[col] = strconv.FormatBool(t)
			default:
				b, _ := json.Marshal(t)
				row[col] = string(b)
			}
		}
		rows = append(rows, row)
	}
	return profile(columns, rows), nil
}

// profile infers per-column types, counts missing cells, and computes basic
// statistics for numeric columns.
func profile(columns []string, rows []map[string]string) *Profile {
	p := &Profile{
		Rows:    len(rows),
		Columns: columns,
		Types:   make(map[string]string, len(columns)),
		Missing: make(map[string]int, len(columns)),
		Stats:   make(map[string]types.ColumnStats),
	}

	for _, col := range columns {
		var values []string
		missing := 0
		for _, row := range rows {
			v, ok := row[col]
			if !ok || strings.TrimSpace(v) == "" {
				missing++
				continue
			}
			values = append(values, v)
		}
		p.Missing[col] = missing
		p.Types[col] = inferType(values)

		if p.Types[col] == "number" {
			p.Stats[col] = numericStats(values)
		}
	}
	return p
}

// inferType classifies the non-missing values of a column. A column is a
// number or bool only when every value parses as one.
func inferType(values []string) string {
	if len(values) == 0 {
		return "empty"
	}
	allNum, allBool := true, true
	for _, v := range values {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			allNum = false
		}
		if _, err := strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			allBool = false
		}
		if !allNum && !allBool {
			break
		}
	}
	switch {
	case allNum:
		return "number"
	case allBool:
		return "bool"
	default:
		return "string"
	}
}

func numericStats(values []string) types.ColumnStats {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return types.ColumnStats{}
	}

	min, max, sum := nums[0], nums[0], 0.0
	for _, n := range nums {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
		sum += n
	}
	mean := sum / float64(len(nums))

	var variance float64
	for _, n := range nums {
		variance += (n - mean) * (n - mean)
	}
	variance /= float64(len(nums))

	return types.ColumnStats{
		Count:  len(nums),
		Min:    min,
		Max:    max,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}

// Summary renders a short natural-language description of the profile for
// inclusion in the analysis prompt.
func (p *Profile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "The dataset has %d rows and %d columns.\n", p.Rows, len(p.Columns))
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(p.Columns, ", "))

	totalMissing := 0
	for _, m := range p.Missing {
		totalMissing += m
	}
	fmt.Fprintf(&b, "Missing values: %d\n", totalMissing)

	for _, col := range p.Columns {
		if st, ok := p.Stats[col]; ok && st.Count > 0 {
			fmt.Fprintf(&b, "%s: min=%.4g max=%.4g mean=%.4g std=%.4g\n",
				col, st.Min, st.Max, st.Mean, st.StdDev)
		}
	}
	return b.String()
}
