// Package hwpml reads HWPML documents, the flat-XML export format of HWP
// (*.hml). The body is a single XML document: BODY/SECTION/P paragraphs
// with CHAR text runs, and TABLE/ROW/CELL grids.
package hwpml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dawoolim/hwptext/document"
)

// Extract parses a flat-XML HWPML document held in memory and returns its
// content. UTF-8, UTF-16 (either endianness) and EUC-KR input are accepted;
// bare HTML entities such as &nbsp; are tolerated.
func Extract(data []byte) (*document.Document, error) {
	text, err := decodeCharset(data)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(text))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader

	doc := &document.Document{}
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if start.Name.Local != "HWPML" {
				return nil, fmt.Errorf("not an HWPML document: root element <%s>", start.Name.Local)
			}
			sawRoot = true
			continue
		}
		if start.Name.Local != "P" {
			continue
		}
		var p paragraph
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("failed to decode paragraph: %w", err)
		}
		p.emit(doc)
	}
	if !sawRoot {
		return nil, fmt.Errorf("not an HWPML document: no root element")
	}
	return doc, nil
}

// decodeCharset transcodes UTF-16 input to UTF-8 before XML parsing, since
// encoding/xml cannot read the declaration of a document it cannot decode.
// Detection follows the XML convention: a BOM, or a 16-bit "<" pattern.
func decodeCharset(data []byte) ([]byte, error) {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case len(data) >= 2 && data[0] == '<' && data[1] == 0x00:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case len(data) >= 2 && data[0] == 0x00 && data[1] == '<':
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode utf-16 input: %w", err)
	}
	return out, nil
}

// charsetReader handles the encoding attribute of the XML declaration.
// UTF-16 was already transcoded before parsing began, so those labels pass
// the input through unchanged.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "utf-16", "utf-16le", "utf-16be":
		return input, nil
	case "euc-kr", "euckr", "ks_c_5601-1987", "ksc5601":
		return korean.EUCKR.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}

type paragraph struct {
	XMLName xml.Name       `xml:"P"`
	Texts   []textRun      `xml:"TEXT"`
	Tables  []tableElement `xml:"TABLE"`
}

// emit writes the paragraph's text followed by any embedded tables. An
// empty paragraph with no tables keeps its blank line, matching the other
// readers.
func (p *paragraph) emit(doc *document.Document) {
	text := p.text()
	if text != "" {
		doc.AddParagraph(document.KindBody, text)
	}
	for i := range p.Tables {
		doc.AddTable(p.Tables[i].toTable())
	}
	if text == "" && len(p.Tables) == 0 {
		doc.AddParagraph(document.KindBody, "")
	}
}

func (p *paragraph) text() string {
	var sb strings.Builder
	for _, t := range p.Texts {
		for _, c := range t.Chars {
			sb.WriteString(c.Value)
		}
	}
	return sb.String()
}

type textRun struct {
	XMLName xml.Name   `xml:"TEXT"`
	Chars   []charNode `xml:"CHAR"`
}

type charNode struct {
	XMLName xml.Name `xml:"CHAR"`
	Value   string   `xml:",chardata"`
}

type tableElement struct {
	XMLName  xml.Name   `xml:"TABLE"`
	RowCount int        `xml:"RowCount,attr"`
	ColCount int        `xml:"ColCount,attr"`
	Rows     []tableRow `xml:"ROW"`
}

func (t *tableElement) toTable() *document.Table {
	out := &document.Table{Rows: t.RowCount, Cols: t.ColCount}
	for ri, tr := range t.Rows {
		for ci, tc := range tr.Cells {
			out.Cells = append(out.Cells, tc.toCell(ri, ci))
		}
	}
	if out.Rows == 0 {
		out.Rows = len(t.Rows)
	}
	if out.Cols == 0 {
		for _, tr := range t.Rows {
			if len(tr.Cells) > out.Cols {
				out.Cols = len(tr.Cells)
			}
		}
	}
	return out
}

type tableRow struct {
	XMLName xml.Name    `xml:"ROW"`
	Cells   []tableCell `xml:"CELL"`
}

type tableCell struct {
	XMLName  xml.Name `xml:"CELL"`
	ColAddr  *int     `xml:"ColAddr,attr"`
	RowAddr  *int     `xml:"RowAddr,attr"`
	ColSpan  int      `xml:"ColSpan,attr"`
	RowSpan  int      `xml:"RowSpan,attr"`
	ParaList paraList `xml:"PARALIST"`
}

// toCell maps a CELL onto the shared model. Grid addresses come from the
// ColAddr/RowAddr attributes when present, and fall back to the cell's
// position within its ROW otherwise.
func (tc *tableCell) toCell(rowIdx, cellIdx int) document.Cell {
	cell := document.Cell{
		Row:     rowIdx,
		Col:     cellIdx,
		RowSpan: tc.RowSpan,
		ColSpan: tc.ColSpan,
	}
	if tc.RowAddr != nil {
		cell.Row = *tc.RowAddr
	}
	if tc.ColAddr != nil {
		cell.Col = *tc.ColAddr
	}
	if cell.RowSpan < 1 {
		cell.RowSpan = 1
	}
	if cell.ColSpan < 1 {
		cell.ColSpan = 1
	}

	var parts []string
	for _, p := range tc.ParaList.Paragraphs {
		if text := p.text(); text != "" {
			parts = append(parts, text)
		}
	}
	cell.Text = strings.Join(parts, "\n")
	return cell
}

type paraList struct {
	XMLName    xml.Name    `xml:"PARALIST"`
	Paragraphs []paragraph `xml:"P"`
}
