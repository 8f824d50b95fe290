// Package hwptext extracts plain text from HWP (Hangul Word Processor)
// documents.
//
// Three on-disk formats are supported, dispatched by content sniffing
// rather than file extension: the binary HWP v5 format (.hwp), the
// zip-and-XML HWPX format (.hwpx), and the flat-XML HWPML format (.hml).
// Extraction produces a document model of paragraphs and tables; tables
// render as GitHub-flavored markdown in the plain-text output.
//
// # Example Usage
//
//	doc, err := hwptext.ExtractFile("document.hwp")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(doc.Text())
//
// # Supported Formats
//
// HWP v5 (.hwp): OLE Compound File container
//   - Paragraph, table, note and text-box extraction
//   - Deflate-compressed stream support
//   - AES-128 ECB decryption for distribution documents
//   - UTF-16LE text decoding
//
// HWPX (.hwpx): zip container with OWPML section XML
//   - Paragraph and table extraction with cell merging
//   - Sections read in numeric order
//
// HWPML (.hml): flat XML export
//   - UTF-8, UTF-16 and EUC-KR input
//   - Paragraph and table extraction
package hwptext

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dawoolim/hwptext/document"
	"github.com/dawoolim/hwptext/hwp5"
	"github.com/dawoolim/hwptext/hwpml"
	"github.com/dawoolim/hwptext/hwpx"
)

// Format identifies the on-disk packaging of an HWP document.
type Format int

const (
	// FormatUnknown marks input that matches no known signature. It is
	// still fed to the binary reader, whose container validation reports
	// the failure.
	FormatUnknown Format = iota
	FormatHWP5
	FormatHWPX
	FormatHWPML
)

func (f Format) String() string {
	switch f {
	case FormatHWP5:
		return "hwp5"
	case FormatHWPX:
		return "hwpx"
	case FormatHWPML:
		return "hwpml"
	}
	return "unknown"
}

var (
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// DetectFormat sniffs the document format from the first bytes of data.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, cfbMagic):
		return FormatHWP5
	case bytes.HasPrefix(data, zipMagic):
		return FormatHWPX
	case looksLikeXML(data):
		return FormatHWPML
	}
	return FormatUnknown
}

func looksLikeXML(data []byte) bool {
	if rest, ok := bytes.CutPrefix(data, utf8BOM); ok {
		data = rest
	}
	if bytes.HasPrefix(data, []byte("<?xml")) || bytes.HasPrefix(data, []byte("<HWPML")) {
		return true
	}
	// UTF-16 XML: a BOM followed by a 16-bit "<".
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE, '<', 0x00}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF, 0x00, '<'})
}

// Extract detects the format of the document held in data and extracts
// its content. Unknown input goes to the binary reader, so a file that is
// no HWP document at all fails with hwp5.ContainerFormatError.
func Extract(data []byte) (*document.Document, error) {
	switch DetectFormat(data) {
	case FormatHWPX:
		return hwpx.Extract(data)
	case FormatHWPML:
		return hwpml.Extract(data)
	}
	return hwp5.Extract(data)
}

// ExtractFile reads the file at path and extracts its content.
func ExtractFile(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Extract(data)
}

// ListStreams opens the file at path as an HWP v5 container and returns
// its stream listing without extracting content.
func ListStreams(path string) ([]hwp5.StreamInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	c, err := hwp5.OpenContainer(data)
	if err != nil {
		return nil, err
	}
	return c.Streams(), nil
}
