// Command hwp2txt extracts plain text from HWP, HWPX and HWPML documents.
//
// Usage:
//
//	hwp2txt [flags] <path>
//
// A single file prints to stdout unless -o is given. A directory input
// requires -o and writes one .txt per document, mirroring relative paths
// under the output directory; -r recurses into subdirectories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dawoolim/hwptext"
	"github.com/dawoolim/hwptext/batch"
	"github.com/dawoolim/hwptext/hwp5"
)

var errColor = color.New(color.FgRed)

func main() {
	var (
		outDir      = flag.String("o", "", "output directory (one .txt per document)")
		recursive   = flag.Bool("r", false, "recurse into subdirectories")
		workers     = flag.Int("j", 0, "parallel workers (default: number of CPUs)")
		configPath  = flag.String("config", "", "YAML settings file")
		listStreams = flag.Bool("list-streams", false, "list container streams instead of extracting")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *listStreams {
		if err := listCommand(path); err != nil {
			errColor.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
		return
	}

	cfg := batch.Config{}
	if *configPath != "" {
		var err error
		cfg, err = batch.LoadConfig(*configPath)
		if err != nil {
			errColor.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *recursive {
		cfg.Recursive = true
	}

	info, err := os.Stat(path)
	if err != nil {
		errColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if !info.IsDir() {
		if err := extractOne(path, *outDir, logger); err != nil {
			errColor.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
		return
	}

	if *outDir == "" {
		fmt.Fprintln(os.Stderr, "directory input requires -o <dir>")
		os.Exit(2)
	}
	if !extractDir(path, *outDir, cfg, logger) {
		os.Exit(1)
	}
}

// extractOne handles a single-file invocation: stdout by default, a
// mirrored .txt when an output directory is given.
func extractOne(path, outDir string, logger *slog.Logger) error {
	doc, err := hwptext.ExtractFile(path)
	if err != nil {
		return err
	}
	for _, w := range doc.Warnings {
		logger.Warn(w, slog.String("path", path))
	}

	if outDir == "" {
		fmt.Print(doc.Text())
		return nil
	}
	out, err := batch.OutputPath(outDir, filepath.Dir(path), path)
	if err != nil {
		return err
	}
	return writeText(out, doc.Text())
}

// extractDir runs the batch pipeline over a directory tree. Returns false
// when any file failed.
func extractDir(root, outDir string, cfg batch.Config, logger *slog.Logger) bool {
	paths, err := batch.CollectFiles(root, cfg.Recursive)
	if err != nil {
		errColor.Fprintf(os.Stderr, "%v\n", err)
		return false
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "no documents under %s\n", root)
		return true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	writeFailed := 0
	runner := batch.NewRunner(cfg, logger)
	summary := runner.Run(ctx, paths, func(res batch.Result) {
		if res.Err != nil {
			errColor.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
			return
		}
		for _, w := range res.Doc.Warnings {
			logger.Warn(w, slog.String("path", res.Path))
		}
		out, err := batch.OutputPath(outDir, root, res.Path)
		if err == nil {
			err = writeText(out, res.Doc.Text())
		}
		if err != nil {
			errColor.Fprintf(os.Stderr, "%s: %v\n", res.Path, err)
			writeFailed++
		}
	})

	fmt.Printf("Done: %d/%d succeeded, %d failed, %s (%.1f files/s)\n",
		summary.Succeeded, summary.Total, summary.Failed,
		summary.Elapsed.Round(time.Millisecond), summary.FilesPerSec())
	if summary.Words > 0 {
		fmt.Printf("Extracted words: %d\n", summary.Words)
	}
	if summary.Failed > 0 {
		printFailureKinds(summary.ByKind)
	}
	return summary.Failed == 0 && writeFailed == 0
}

func printFailureKinds(byKind map[string]int) {
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stderr)
	tw.AppendHeader(table.Row{"Failure", "Count"})
	for _, kind := range kinds {
		tw.AppendRow(table.Row{kind, byKind[kind]})
	}
	tw.Render()
}

// listCommand prints the container's stream directory and, when present,
// its summary properties.
func listCommand(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	c, err := hwp5.OpenContainer(data)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Stream", "Bytes", "Compressed", "Encrypted"})
	for _, info := range c.Streams() {
		tw.AppendRow(table.Row{info.Path, info.Size, info.Compressed, info.Encrypted})
	}
	tw.Render()

	props, err := c.SummaryInfo()
	if err != nil {
		if errors.Is(err, hwp5.ErrStreamNotFound) {
			return nil
		}
		return err
	}
	fmt.Println()
	pw := table.NewWriter()
	pw.SetOutputMirror(os.Stdout)
	pw.AppendHeader(table.Row{"Property", "Value"})
	for _, p := range props {
		pw.AppendRow(table.Row{p.Name, p.Value})
	}
	pw.Render()
	return nil
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
