package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/conformia/internal/model"
)

// Comparer compares one candidate file against a template file
type Comparer interface {
	CompareFiles(ctx context.Context, templatePath, candidatePath string) (*model.CompareResult, error)
}

// CompareJob compares a single candidate against the batch template
type CompareJob struct {
	Template  string
	Candidate string
	Comparer  Comparer
}

// Execute executes the comparison
func (j *CompareJob) Execute(ctx context.Context) Result {
	result, err := j.Comparer.CompareFiles(ctx, j.Template, j.Candidate)
	if err != nil {
		return &CompareResult{Candidate: j.Candidate, Error: err}
	}
	return &CompareResult{Candidate: j.Candidate, Result: result}
}

// CompareResult is the outcome for one candidate of a batch
type CompareResult struct {
	Candidate string
	Result    *model.CompareResult
	Error     error
}

// GetError returns the error from the comparison
func (r *CompareResult) GetError() error {
	return r.Error
}

// BatchProcessor compares many candidates against one template concurrently
type BatchProcessor struct {
	comparer    Comparer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(comparer Comparer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		comparer:    comparer,
		concurrency: concurrency,
	}
}

// ProcessCandidates compares every candidate against template. Results are
// in input order; candidates not started before cancellation carry the
// context error.
func (b *BatchProcessor) ProcessCandidates(ctx context.Context, template string, candidates []string) []*CompareResult {
	if len(candidates) == 0 {
		return []*CompareResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, candidate := range candidates {
		if !pool.Submit(&CompareJob{Template: template, Candidate: candidate, Comparer: b.comparer}) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*CompareResult, len(candidates))
	for i, candidate := range candidates {
		if i < len(results) {
			if r, ok := results[i].(*CompareResult); ok {
				out[i] = r
				continue
			}
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &CompareResult{Candidate: candidate, Error: err}
	}

	return out
}

// ProcessFile reads candidate paths from a list file and compares them
func (b *BatchProcessor) ProcessFile(ctx context.Context, template, listPath string) ([]*CompareResult, error) {
	candidates, err := ReadCandidatesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	return b.ProcessCandidates(ctx, template, candidates), nil
}

// ReadCandidatesFromFile reads candidate paths (one per line). Relative
// paths resolve against the list file's directory.
func ReadCandidatesFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
