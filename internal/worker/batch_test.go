package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/conformia/internal/model"
)

// mockComparer implements Comparer
type mockComparer struct {
	failOn string
}

func (m *mockComparer) CompareFiles(ctx context.Context, templatePath, candidatePath string) (*model.CompareResult, error) {
	time.Sleep(5 * time.Millisecond)
	if m.failOn != "" && strings.Contains(candidatePath, m.failOn) {
		return nil, errors.New("compare error")
	}
	return &model.CompareResult{
		Metadata: model.ResultMetadata{TemplateName: templatePath, CandidateName: candidatePath},
	}, nil
}

func TestBatchProcessor_ProcessCandidates(t *testing.T) {
	processor := NewBatchProcessor(&mockComparer{}, 2)

	candidates := []string{"a.docx", "b.docx", "c.docx"}
	results := processor.ProcessCandidates(context.Background(), "template.docx", candidates)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Candidate != candidates[i] {
			t.Errorf("expected candidate %s at index %d, got %s", candidates[i], i, res.Candidate)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Candidate, res.Error)
			continue
		}
		if res.Result == nil || res.Result.Metadata.CandidateName != candidates[i] {
			t.Errorf("expected result for %s", candidates[i])
		}
	}
}

func TestBatchProcessor_ProcessCandidates_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockComparer{failOn: "bad"}, 2)

	results := processor.ProcessCandidates(context.Background(), "t.pdf", []string{"good.pdf", "bad.pdf"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("expected success for good.pdf, got %v", results[0].Error)
	}
	if results[1].GetError() == nil {
		t.Error("expected error for bad.pdf, got nil")
	}
	if results[1].Result != nil {
		t.Error("expected nil result on error")
	}
}

func TestBatchProcessor_ProcessCandidates_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockComparer{}, 2)

	results := processor.ProcessCandidates(context.Background(), "t.docx", []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessCandidates_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockComparer{}, 2)
	results := processor.ProcessCandidates(ctx, "t.docx", []string{"a.docx", "b.docx"})

	if len(results) != 2 {
		t.Fatalf("expected a result per candidate, got %d", len(results))
	}
	for _, res := range results {
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected context.Canceled for %s, got %v", res.Candidate, res.Error)
		}
	}
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidates.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCandidatesFromFile(t *testing.T) {
	path := writeList(t, "a.docx\n# comment\n/abs/b.docx\n   \n  sub/c.docx  \na.docx\n")
	dir := filepath.Dir(path)

	got, err := ReadCandidatesFromFile(path)
	if err != nil {
		t.Fatalf("ReadCandidatesFromFile failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "a.docx"),
		"/abs/b.docx",
		filepath.Join(dir, "sub", "c.docx"),
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, got[i])
		}
	}
}

func TestReadCandidatesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadCandidatesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeList(t, "a.docx\nb.docx\n# comment\n\nc.docx\n")

	processor := NewBatchProcessor(&mockComparer{}, 2)
	results, err := processor.ProcessFile(context.Background(), "t.docx", path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	path := writeList(t, "")

	processor := NewBatchProcessor(&mockComparer{}, 2)
	results, err := processor.ProcessFile(context.Background(), "t.docx", path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockComparer{}, 2)
	if _, err := processor.ProcessFile(context.Background(), "t.docx", "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
