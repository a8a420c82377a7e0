// Copyright Tadafuq Labs, 2026. All rights reserved.

package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTemp(t, "sales.csv",
		"region,units,active\nnorth,10,true\nsouth,20,false\neast,,true\n")

	p, err := Load(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Rows != 3 {
		t.Errorf("rows = %d, want 3", p.Rows)
	}
	if len(p.Columns) != 3 {
		t.Errorf("columns = %v, want 3", p.Columns)
	}
	if p.Types["region"] != "string" {
		t.Errorf("region type = %q, want string", p.Types["region"])
	}
	if p.Types["units"] != "number" {
		t.Errorf("units type = %q, want number", p.Types["units"])
	}
	if p.Types["active"] != "bool" {
		t.Errorf("active type = %q, want bool", p.Types["active"])
	}
	if p.Missing["units"] != 1 {
		t.Errorf("units missing = %d, want 1", p.Missing["units"])
	}

	st := p.Stats["units"]
	if st.Count != 2 || st.Min != 10 || st.Max != 20 || st.Mean != 15 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if math.Abs(st.StdDev-5) > 1e-9 {
		t.Errorf("std = %v, want 5", st.StdDev)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "users.json",
		`[{"name":"amal","age":30},{"name":"badr","age":40},{"name":"chadi"}]`)

	p, err := Load(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Rows != 3 {
		t.Errorf("rows = %d, want 3", p.Rows)
	}
	// Column order is sorted.
	if len(p.Columns) != 2 || p.Columns[0] != "age" || p.Columns[1] != "name" {
		t.Errorf("columns = %v", p.Columns)
	}
	if p.Types["age"] != "number" {
		t.Errorf("age type = %q", p.Types["age"])
	}
	if p.Missing["age"] != 1 {
		t.Errorf("age missing = %d, want 1", p.Missing["age"])
	}
	if st := p.Stats["age"]; st.Mean != 35 {
		t.Errorf("age mean = %v, want 35", st.Mean)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		maxSize int64
		wantSub string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			wantSub: "not found",
		},
		{
			name:    "unsupported extension",
			path:    func(t *testing.T) string { return writeTemp(t, "data.xlsx", "junk") },
			wantSub: "unsupported",
		},
		{
			name:    "oversized file",
			path:    func(t *testing.T) string { return writeTemp(t, "big.csv", strings.Repeat("a,b\n", 100)) },
			maxSize: 10,
			wantSub: "size limit",
		},
		{
			name:    "empty csv",
			path:    func(t *testing.T) string { return writeTemp(t, "empty.csv", "") },
			wantSub: "empty",
		},
		{
			name:    "json not an array",
			path:    func(t *testing.T) string { return writeTemp(t, "obj.json", `{"a":1}`) },
			wantSub: "array of objects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t), tt.maxSize)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"all numbers", []string{"1", "2.5", "-3"}, "number"},
		{"mixed", []string{"1", "two"}, "string"},
		{"bools", []string{"true", "false"}, "bool"},
		{"no values", nil, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferType(tt.values); got != tt.want {
				t.Errorf("inferType(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	path := writeTemp(t, "s.csv", "x,y\n1,a\n2,b\n")
	p, err := Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	s := p.Summary()
	for _, want := range []string{"2 rows", "2 columns", "x, y", "mean=1.5"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}
