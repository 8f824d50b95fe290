package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dawoolim/hwptext/internal/hwptest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, path, text string) {
	t.Helper()
	raw := hwptest.Doc(hwptest.FlagCompressed,
		hwptest.Deflate(hwptest.DocInfo(1)),
		hwptest.Deflate(hwptest.Paragraph(0, text)))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunExtractsFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "a.hwp"), "하나 둘 셋")
	writeDoc(t, filepath.Join(dir, "b.hwp"), "넷 다섯")
	if err := os.WriteFile(filepath.Join(dir, "c.hwp"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(Config{Workers: 2}, quietLogger())
	results := map[string]Result{}
	summary := r.Run(context.Background(), []string{
		filepath.Join(dir, "a.hwp"),
		filepath.Join(dir, "b.hwp"),
		filepath.Join(dir, "c.hwp"),
	}, func(res Result) {
		results[res.Path] = res
	})

	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.ByKind["container format"] != 1 {
		t.Errorf("failure kinds = %v", summary.ByKind)
	}
	if summary.Words != 5 {
		t.Errorf("words = %d, want 5", summary.Words)
	}

	a := results[filepath.Join(dir, "a.hwp")]
	if a.Err != nil || a.Doc == nil || a.Words != 3 {
		t.Errorf("result for a.hwp = %+v", a)
	}
	c := results[filepath.Join(dir, "c.hwp")]
	if c.Err == nil {
		t.Error("garbage file succeeded")
	}
}

func TestRunSkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "big.hwp"), "본문")

	r := NewRunner(Config{Workers: 1, MaxFileSize: 10}, quietLogger())
	var got Result
	summary := r.Run(context.Background(), []string{filepath.Join(dir, "big.hwp")}, func(res Result) {
		got = res
	})

	var sizeErr *FileTooLargeError
	if !errors.As(got.Err, &sizeErr) {
		t.Fatalf("got %v, want FileTooLargeError", got.Err)
	}
	if sizeErr.Limit != 10 {
		t.Errorf("limit = %d", sizeErr.Limit)
	}
	if summary.ByKind["file too large"] != 1 {
		t.Errorf("failure kinds = %v", summary.ByKind)
	}
}

func TestRunSeparatesProtectionFromFormatFailures(t *testing.T) {
	dir := t.TempDir()
	locked := hwptest.Doc(hwptest.FlagCompressed|hwptest.FlagPassword,
		hwptest.Deflate(hwptest.DocInfo(1)),
		hwptest.Deflate(hwptest.Paragraph(0, "잠김")))
	if err := os.WriteFile(filepath.Join(dir, "locked.hwp"), locked, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.hwp"), []byte("not a document"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(Config{Workers: 2}, quietLogger())
	summary := r.Run(context.Background(), []string{
		filepath.Join(dir, "locked.hwp"),
		filepath.Join(dir, "bad.hwp"),
	}, nil)

	if summary.Failed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.ByKind["protected document"] != 1 || summary.ByKind["container format"] != 1 {
		t.Errorf("failure kinds = %v", summary.ByKind)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.hwp", "b.hwp", "c.hwp", "d.hwp"} {
		path := filepath.Join(dir, name)
		writeDoc(t, path, "본문")
		paths = append(paths, path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Config{Workers: 2}, quietLogger())
	summary := r.Run(ctx, paths, func(res Result) {
		if res.Err == nil {
			t.Errorf("%s extracted after cancellation", res.Path)
		}
	})

	if summary.Succeeded != 0 || summary.Failed != summary.Total {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Failed > 0 && summary.ByKind["cancelled"] != summary.Failed {
		t.Errorf("failure kinds = %v", summary.ByKind)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hwp2txt.yaml")
	src := "workers: 3\nmax_file_size: 1024\nrecursive: true\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 3 || cfg.MaxFileSize != 1024 || !cfg.Recursive {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing config accepted")
	}
}

func TestConfigDefaults(t *testing.T) {
	r := NewRunner(Config{}, quietLogger())
	if r.cfg.Workers < 1 {
		t.Errorf("workers = %d", r.cfg.Workers)
	}
	if r.cfg.MaxFileSize != 256<<20 {
		t.Errorf("max file size = %d", r.cfg.MaxFileSize)
	}
	if r.cfg.Recursive {
		t.Error("recursion on by default")
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.hwp", "b.hwpx", "c.hml", "d.txt", "sub/e.HWP"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	flat, err := CollectFiles(dir, false)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(flat) != 3 {
		t.Errorf("flat = %v", flat)
	}

	deep, err := CollectFiles(dir, true)
	if err != nil {
		t.Fatalf("collect recursive: %v", err)
	}
	if len(deep) != 4 {
		t.Errorf("recursive = %v", deep)
	}
}

func TestOutputPath(t *testing.T) {
	got, err := OutputPath("out", "in", filepath.Join("in", "sub", "doc.hwp"))
	if err != nil {
		t.Fatalf("output path: %v", err)
	}
	if want := filepath.Join("out", "sub", "doc.txt"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"안녕하세요 세계", 2},
		{"a b c", 3},
		{"", 0},
		{"| --- | --- |", 0},
		{"3번 문서", 2},
	}
	for _, tc := range cases {
		if got := countWords(tc.text); got != tc.want {
			t.Errorf("countWords(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
