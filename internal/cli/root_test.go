package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProblem(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.toml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")
	defer SetVersion("dev", "", "")

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"geost 1.0.0", "commit: abc123", "built: 2024-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output %q lacks %q", out, want)
		}
	}
}

func TestSolveCount(t *testing.T) {
	path := writeProblem(t, twoSquares)
	out, err := execute(t, "solve", "--count", path)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Errorf("solve --count = %q, want 2", out)
	}
}

func TestSolveRendersSolutions(t *testing.T) {
	path := writeProblem(t, twoSquares)
	out, err := execute(t, "solve", "-n", "1", "--stats", path)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	for _, want := range []string{"Solution 1", "o1", "o2", "Episodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Solution 2") {
		t.Errorf("limit 1 rendered a second solution:\n%s", out)
	}
}

func TestSolveGreedyFlag(t *testing.T) {
	path := writeProblem(t, twoSquares)
	out, err := execute(t, "solve", "--greedy", "--count", path)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	// a successful greedy placement commits the root
	if strings.TrimSpace(out) != "1" {
		t.Errorf("solve --greedy --count = %q, want 1", out)
	}
}

func TestSolveErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"missing file", func(t *testing.T) []string {
			return []string{"solve", filepath.Join(t.TempDir(), "absent.toml")}
		}},
		{"bad strategy", func(t *testing.T) []string {
			return []string{"solve", "--strategy", "random", writeProblem(t, twoSquares)}
		}},
		{"invalid problem", func(t *testing.T) []string {
			return []string{"solve", writeProblem(t, "dimension = 0\n")}
		}},
		{"no arguments", func(t *testing.T) []string {
			return []string{"solve"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args(t)...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
