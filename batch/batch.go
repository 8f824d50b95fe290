// Package batch runs text extraction over many files with a fixed worker
// pool, isolating per-file failures and aggregating run statistics.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"

	"github.com/dawoolim/hwptext"
	"github.com/dawoolim/hwptext/document"
	"github.com/dawoolim/hwptext/hwp5"
)

// FileTooLargeError reports a file skipped because it exceeds the
// configured size limit. The file is never read.
type FileTooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds the %d byte limit", e.Path, e.Size, e.Limit)
}

// Result is the outcome of one file. Doc is nil when Err is set.
type Result struct {
	Path     string
	Doc      *document.Document
	Err      error
	Duration time.Duration
	Words    int
}

// Summary aggregates a whole run. ByKind counts failures bucketed by
// ErrorKind.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[string]int
	Words     int
	Elapsed   time.Duration
}

// FilesPerSec returns the run's throughput.
func (s *Summary) FilesPerSec() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total) / s.Elapsed.Seconds()
}

// Extractions slower than this are logged at warn level.
const slowFile = 5 * time.Second

// Runner processes files through a fixed pool of workers.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// NewRunner builds a Runner. Zero cfg fields take their defaults; a nil
// logger falls back to slog.Default().
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, log: logger}
}

// Run extracts every file in paths. fn, when non-nil, is called once per
// file from the collecting goroutine, in completion order. Cancelling ctx
// stops the run between files; files already in flight finish and
// unstarted ones fail with the context's error.
func (r *Runner) Run(ctx context.Context, paths []string, fn func(Result)) Summary {
	start := time.Now()

	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if err := ctx.Err(); err != nil {
					results <- Result{Path: path, Err: err}
					continue
				}
				results <- r.process(path)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	summary := Summary{ByKind: map[string]int{}}
	for res := range results {
		summary.Total++
		if res.Err != nil {
			summary.Failed++
			summary.ByKind[ErrorKind(res.Err)]++
		} else {
			summary.Succeeded++
			summary.Words += res.Words
		}
		if fn != nil {
			fn(res)
		}
	}
	summary.Elapsed = time.Since(start)
	return summary
}

// process handles one file. A panic in the decoding pipeline becomes the
// file's error instead of taking down the run.
func (r *Runner) process(path string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Path: path, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("failed to stat file: %w", err)}
	}
	if info.Size() > r.cfg.MaxFileSize {
		return Result{Path: path, Err: &FileTooLargeError{Path: path, Size: info.Size(), Limit: r.cfg.MaxFileSize}}
	}

	start := time.Now()
	doc, err := hwptext.ExtractFile(path)
	elapsed := time.Since(start)
	if elapsed > slowFile {
		r.log.Warn("slow extraction", slog.String("path", path), slog.Duration("elapsed", elapsed))
	}
	if err != nil {
		return Result{Path: path, Err: err, Duration: elapsed}
	}
	r.log.Debug("extracted", slog.String("path", path), slog.Duration("elapsed", elapsed))
	return Result{Path: path, Doc: doc, Duration: elapsed, Words: docWords(doc)}
}

// ErrorKind buckets an extraction error for failure reporting.
func ErrorKind(err error) string {
	var (
		size   *FileTooLargeError
		prot   *hwp5.UnsupportedProtectionError
		cont   *hwp5.ContainerFormatError
		decr   *hwp5.DecryptionError
		decomp *hwp5.DecompressionError
		rec    *hwp5.RecordFormatError
	)
	switch {
	case errors.As(err, &size):
		return "file too large"
	case errors.As(err, &prot):
		return "protected document"
	case errors.As(err, &cont):
		return "container format"
	case errors.As(err, &decr):
		return "decryption"
	case errors.As(err, &decomp):
		return "decompression"
	case errors.As(err, &rec):
		return "record format"
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "other"
}

func docWords(doc *document.Document) int {
	n := 0
	for _, b := range doc.Blocks {
		if b.Table != nil {
			for _, c := range b.Table.Cells {
				n += countWords(c.Text)
			}
			continue
		}
		n += countWords(b.Text)
	}
	return n
}

// countWords segments text per UAX #29 and counts the word-like tokens:
// those containing at least one letter or digit.
func countWords(text string) int {
	n := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		for _, r := range tokens.Value() {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				n++
				break
			}
		}
	}
	return n
}

// CollectFiles lists the HWP-family files (.hwp, .hwpx, .hml) under root.
// Without recursive only the directory's immediate entries are considered.
func CollectFiles(root string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && knownExt(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && knownExt(e.Name()) {
			paths = append(paths, filepath.Join(root, e.Name()))
		}
	}
	return paths, nil
}

func knownExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hwp", ".hwpx", ".hml":
		return true
	}
	return false
}

// OutputPath maps an input file under root to its mirrored .txt path in
// outDir.
func OutputPath(outDir, root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve relative path: %w", err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".txt"
	return filepath.Join(outDir, rel), nil
}
