package hwp5

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
)

// StreamInfo describes one named stream in the container directory.
// Compressed and Encrypted are derived from the FileHeader flags and the
// stream's storage, so callers can see what the decoding pipeline will do
// without running it.
type StreamInfo struct {
	Path       string
	Size       int64
	Compressed bool
	Encrypted  bool
}

// Container is a parsed HWP compound container: the directory of named
// streams plus the FileHeader. It owns the stream descriptors for the
// duration of one extraction pass.
type Container struct {
	Header   FileHeader
	Warnings []string

	infos   []StreamInfo
	entries map[string]*mscfb.File
	cached  map[string][]byte
}

// OpenContainer parses the compound-container directory and the FileHeader
// stream. It fails with a ContainerFormatError on any unreadable or
// non-HWP input; protection flags are checked later by Extract so stream
// listing still works on protected files.
func OpenContainer(data []byte) (*Container, error) {
	if len(data) == 0 {
		return nil, &ContainerFormatError{Reason: "empty file"}
	}

	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, &ContainerFormatError{Reason: "not a compound file", Err: err}
	}

	c := &Container{
		entries: make(map[string]*mscfb.File),
		cached:  make(map[string][]byte),
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if len(entry.Path) == 0 && entry.Name == "Root Entry" {
			continue
		}
		path := entryPath(entry)
		if _, dup := c.entries[path]; dup {
			continue
		}
		c.entries[path] = entry
		c.infos = append(c.infos, StreamInfo{Path: path, Size: entry.Size})
	}

	headerRaw, err := c.ReadStream("FileHeader")
	if err != nil {
		return nil, &ContainerFormatError{Reason: "missing FileHeader stream", Err: err}
	}
	c.Header, err = parseFileHeader(headerRaw)
	if err != nil {
		return nil, &ContainerFormatError{Reason: "invalid file header", Err: err}
	}

	for i := range c.infos {
		c.classify(&c.infos[i])
	}
	return c, nil
}

func entryPath(entry *mscfb.File) string {
	if len(entry.Path) == 0 {
		return entry.Name
	}
	return strings.Join(entry.Path, "/") + "/" + entry.Name
}

// classify derives the per-stream pipeline flags from the FileHeader and
// the stream's storage location.
func (c *Container) classify(info *StreamInfo) {
	section := info.Path == "DocInfo" ||
		strings.HasPrefix(info.Path, "BodyText/") ||
		strings.HasPrefix(info.Path, "ViewText/")
	info.Compressed = section && c.Header.Properties.Compressed()
	info.Encrypted = strings.HasPrefix(info.Path, "ViewText/") &&
		c.Header.Properties.Distribution()
}

// Streams lists the container's streams in the order encountered in the
// directory tree, without decoding anything.
func (c *Container) Streams() []StreamInfo {
	return c.infos
}

// ReadStream returns the raw bytes of the named stream. A declared size
// that exceeds the sector-chain byte count is truncated to what the chain
// provides, with a warning recorded on the container.
func (c *Container) ReadStream(path string) ([]byte, error) {
	if data, ok := c.cached[path]; ok {
		return data, nil
	}
	entry, ok := c.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, path)
	}

	buf := make([]byte, entry.Size)
	n, err := io.ReadFull(entry, buf)
	if err != nil && n < len(buf) {
		c.warnf("stream %s: declared %d bytes, sector chain holds %d", path, entry.Size, n)
		buf = buf[:n]
	}
	c.cached[path] = buf
	return buf, nil
}

func (c *Container) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}
