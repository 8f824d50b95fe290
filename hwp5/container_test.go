package hwp5

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/dawoolim/hwptext/internal/hwptest"
)

func TestOpenContainerStreams(t *testing.T) {
	raw := hwptest.CompoundFile([]hwptest.Stream{
		{Path: "FileHeader", Data: hwptest.FileHeader(hwptest.FlagCompressed | hwptest.FlagDistribution)},
		{Path: "DocInfo", Data: hwptest.Deflate(hwptest.DocInfo(1))},
		{Path: "ViewText/Section0", Data: []byte{0}},
	})

	c, err := OpenContainer(raw)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	flags := make(map[string]StreamInfo)
	for _, info := range c.Streams() {
		flags[info.Path] = info
	}
	// Storages may appear as zero-size entries; the named streams must be
	// present with the right pipeline flags.
	for _, path := range []string{"FileHeader", "DocInfo", "ViewText/Section0"} {
		if _, ok := flags[path]; !ok {
			t.Fatalf("stream %s missing from listing: %v", path, flags)
		}
	}
	if got := flags["FileHeader"]; got.Compressed || got.Encrypted {
		t.Errorf("FileHeader flags = %+v", got)
	}
	if got := flags["DocInfo"]; !got.Compressed || got.Encrypted {
		t.Errorf("DocInfo flags = %+v", got)
	}
	if got := flags["ViewText/Section0"]; !got.Compressed || !got.Encrypted {
		t.Errorf("ViewText flags = %+v", got)
	}
}

func TestOpenContainerRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("just some text, not a document")},
		{"zip magic", []byte("PK\x03\x04rest")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := OpenContainer(tc.data)
			var cfe *ContainerFormatError
			if !errors.As(err, &cfe) {
				t.Fatalf("got %v, want ContainerFormatError", err)
			}
		})
	}
}

func TestOpenContainerMissingFileHeader(t *testing.T) {
	raw := hwptest.CompoundFile([]hwptest.Stream{
		{Path: "DocInfo", Data: hwptest.DocInfo(1)},
	})
	_, err := OpenContainer(raw)
	var cfe *ContainerFormatError
	if !errors.As(err, &cfe) {
		t.Fatalf("got %v, want ContainerFormatError", err)
	}
	if !strings.Contains(cfe.Reason, "FileHeader") {
		t.Errorf("reason = %q", cfe.Reason)
	}
}

func TestReadStreamMissing(t *testing.T) {
	c, err := OpenContainer(hwptest.Doc(0, hwptest.DocInfo(1), hwptest.Paragraph(0, "x")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := c.ReadStream("BinData/BIN0001.jpg"); !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("got %v, want ErrStreamNotFound", err)
	}
}

func TestReadStreamShortChain(t *testing.T) {
	// Above the mini-stream cutoff so the stream sits on regular sectors
	// and the size patch below stays within that addressing scheme.
	raw := hwptest.CompoundFile([]hwptest.Stream{
		{Path: "FileHeader", Data: hwptest.FileHeader(0)},
		{Path: "DocInfo", Data: make([]byte, 5000)},
	})
	// Inflate the declared size of DocInfo (directory entry 2, after the
	// root and FileHeader) beyond what its sector chain holds.
	sizeOff := 512 + 2*128 + 120
	binary.LittleEndian.PutUint64(raw[sizeOff:], 6000)

	c, err := OpenContainer(raw)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := c.ReadStream("DocInfo")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) >= 6000 {
		t.Fatalf("truncation not applied: %d bytes", len(data))
	}
	if len(c.Warnings) == 0 || !strings.Contains(c.Warnings[0], "DocInfo") {
		t.Errorf("short chain not reported: %v", c.Warnings)
	}
}
