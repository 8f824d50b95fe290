package hwp5

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dawoolim/hwptext/internal/hwptest"
)

func TestInflateRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("record payload "), 64)

	got, err := inflate(hwptest.Deflate(src), true, "BodyText/Section0")
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(src))
	}
}

func TestInflateIgnoresTrailingPadding(t *testing.T) {
	src := []byte("compressed stream body")
	data := append(hwptest.Deflate(src), make([]byte, 512)...)

	got, err := inflate(data, true, "DocInfo")
	if err != nil {
		t.Fatalf("inflate with trailing zeros: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Errorf("got %q, want %q", got, src)
	}
}

func TestInflatePassthrough(t *testing.T) {
	src := []byte{1, 2, 3}
	got, err := inflate(src, false, "BodyText/Section0")
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Errorf("passthrough altered data: %v", got)
	}
}

func TestInflateCorrupt(t *testing.T) {
	_, err := inflate([]byte{0xFF, 0xFF, 0xFF, 0xFF}, true, "DocInfo")
	var de *DecompressionError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want DecompressionError", err)
	}
	if de.Stream != "DocInfo" {
		t.Errorf("Stream = %q, want DocInfo", de.Stream)
	}
}
