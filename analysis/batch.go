package analysis

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/stridelab/stepscan/logging"
)

// FileResult is the outcome of analyzing one file in a batch. Exactly
// one of Summary and Err is set.
type FileResult struct {
	Path    string
	Summary *SimfileSummary
	Err     error
}

func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// AnalyzeBatch analyzes every file concurrently and returns one result
// per input, in input order. A failing file is reported in its result
// and never aborts the rest. Cancellation is checked between files;
// files not yet started when the context ends carry the context error.
func AnalyzeBatch(ctx context.Context, files []string, opts Options) []FileResult {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results
	}

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = analyzeFile(files[idx], opts)
			}
		}()
	}

feed:
	for i := range files {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(files); j++ {
				results[j] = FileResult{Path: files[j], Err: err}
			}
			break
		}
		select {
		case <-ctx.Done():
			for j := i; j < len(files); j++ {
				results[j] = FileResult{Path: files[j], Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func analyzeFile(path string, opts Options) FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("failed to read simfile", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return FileResult{Path: path, Err: err}
	}
	summary, err := Analyze(data, extensionOf(path), opts)
	if err != nil {
		logging.Warn("failed to analyze simfile", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Summary: summary}
}
