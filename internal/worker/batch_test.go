package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hradek/fiskal/internal/model"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	calls   int32
	failOn  string
	failErr error
}

func (m *mockAnalyzer) AnalyzeFile(ctx context.Context, path string) (*model.AnalysisReport, error) {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.failOn != "" && path == m.failOn {
		return nil, m.failErr
	}
	return &model.AnalysisReport{
		RunID:        "run-" + filepath.Base(path),
		TotalCostCZK: 1000,
	}, nil
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	analyzer := &mockAnalyzer{}
	processor := NewBatchProcessor(analyzer, 3)

	paths := []string{"a.json", "b.json", "c.json", "d.json"}
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	if atomic.LoadInt32(&analyzer.calls) != int32(len(paths)) {
		t.Errorf("expected %d analyzer calls, got %d", len(paths), analyzer.calls)
	}

	seen := make(map[string]bool)
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			continue
		}
		if res.Report == nil {
			t.Errorf("expected report for %s", res.Path)
			continue
		}
		if res.Report.RunID != "run-"+res.Path {
			t.Errorf("result for %s carries report %s", res.Path, res.Report.RunID)
		}
		seen[res.Path] = true
	}
	for _, p := range paths {
		if !seen[p] {
			t.Errorf("missing result for %s", p)
		}
	}
}

func TestBatchProcessor_ErrorIsolation(t *testing.T) {
	analyzer := &mockAnalyzer{
		failOn:  "bad.json",
		failErr: errors.New("parse failure"),
	}
	processor := NewBatchProcessor(analyzer, 2)

	results := processor.ProcessPaths(context.Background(), []string{"good.json", "bad.json", "other.json"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	failures := 0
	for _, res := range results {
		if res.GetError() != nil {
			failures++
			if res.Path != "bad.json" {
				t.Errorf("unexpected failure for %s: %v", res.Path, res.Error)
			}
			if res.Report != nil {
				t.Error("expected nil report on error")
			}
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	results := processor.ProcessPaths(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	content := `claims/a.json
# pending review
claims/b.json

claims/c.json   `

	listPath := filepath.Join(t.TempDir(), "claims.txt")
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{"claims/a.json", "claims/b.json", "claims/c.json"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d", len(expected), len(paths))
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected path %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_Deduplication(t *testing.T) {
	content := `claims/a.json
claims/a.json`

	listPath := filepath.Join(t.TempDir(), "dupes.txt")
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected 1 path after deduplication, got %d", len(paths))
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	_, err := ReadPathsFromFile(filepath.Join(t.TempDir(), "no_such_file.txt"))
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	content := "one.json\ntwo.json\n# comment\n\nthree.json\n"

	listPath := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	processor := NewBatchProcessor(&mockAnalyzer{}, 2)
	results, err := processor.ProcessFile(context.Background(), listPath)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestAnalyzeResult_GetError(t *testing.T) {
	r1 := &AnalyzeResult{Path: "a.json", Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("analysis failed")
	r2 := &AnalyzeResult{Path: "a.json", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
