package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/okulov/fairline/internal/model"
	"github.com/okulov/fairline/internal/pipeline"
)

// Runner defines the interface for running one fusion request
type Runner interface {
	Run(ctx context.Context, req pipeline.FuseRequest) (*model.Report, error)
}

// FuseFileJob fuses one evidence file
type FuseFileJob struct {
	Path   string
	Alpha  float64
	Runner Runner
}

// Execute executes the fusion job
func (j *FuseFileJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, pipeline.FuseRequest{
		Question:     j.Path,
		EvidencePath: j.Path,
		Alpha:        j.Alpha,
	})
	return &FuseFileResult{Path: j.Path, Report: report, Error: err}
}

// FuseFileResult represents the result of a fusion job
type FuseFileResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the fusion result
func (r *FuseFileResult) GetError() error {
	return r.Error
}

// BatchProcessor fuses multiple evidence files concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{runner: runner, concurrency: concurrency}
}

// ProcessPaths fuses the given evidence files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string, alpha float64) []*FuseFileResult {
	if len(paths) == 0 {
		return []*FuseFileResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&FuseFileJob{Path: path, Alpha: alpha, Runner: b.runner})
	}

	results := pool.Wait()

	out := make([]*FuseFileResult, len(results))
	for i, result := range results {
		out[i] = result.(*FuseFileResult)
	}
	return out
}

// ProcessFile reads evidence-file paths from a list file and fuses them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string, alpha float64) ([]*FuseFileResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}
	return b.ProcessPaths(ctx, paths, alpha), nil
}

// ReadPathsFromFile reads file paths from a list file (one per line)
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
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
