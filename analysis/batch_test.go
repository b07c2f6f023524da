package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempSimfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

func TestAnalyzeBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeTempSimfile(t, dir, "good.sm", basicSM)
	empty := writeTempSimfile(t, dir, "empty.sm", "#TITLE:Nothing;\n")
	missing := filepath.Join(dir, "missing.sm")

	results := AnalyzeBatch(context.Background(), []string{good, empty, missing}, DefaultOptions())
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if results[0].Err != nil {
		t.Errorf("good file error = %v", results[0].Err)
	}
	if results[0].Summary == nil || results[0].Summary.Title != "Example Song" {
		t.Errorf("good file summary = %+v, want Example Song", results[0].Summary)
	}
	if !errors.Is(results[1].Err, ErrNoMatchingSteps) {
		t.Errorf("chartless file error = %v, want ErrNoMatchingSteps", results[1].Err)
	}
	if results[2].Err == nil {
		t.Error("missing file error = nil, want read failure")
	}
	if results[2].Path != missing {
		t.Errorf("results[2].Path = %q, want %q", results[2].Path, missing)
	}
}

func TestAnalyzeBatchHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeTempSimfile(t, dir, "a.sm", basicSM),
		writeTempSimfile(t, dir, "b.sm", basicSM),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := AnalyzeBatch(ctx, files, DefaultOptions())
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func TestAnalyzeBatchEmptyInput(t *testing.T) {
	results := AnalyzeBatch(context.Background(), nil, DefaultOptions())
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0", len(results))
	}
}
