// Package hwpx reads HWPX documents, the zip-and-XML packaging of HWP.
// The body lives in Contents/section*.xml files; paragraphs and tables
// map onto the shared document model.
package hwpx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dawoolim/hwptext/document"
)

// Extract parses an HWPX archive held in memory and returns its content.
// Section files are read in numeric order regardless of their order in
// the archive directory.
func Extract(data []byte) (*document.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open container: %w", err)
	}

	sections := sectionNames(zr)
	if len(sections) == 0 {
		return nil, fmt.Errorf("no section files under Contents/")
	}

	doc := &document.Document{}
	for _, name := range sections {
		if err := extractSection(zr, name, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func sectionNames(zr *zip.Reader) []string {
	type section struct {
		name string
		n    int
	}
	var secs []section
	for _, f := range zr.File {
		rest, ok := strings.CutPrefix(f.Name, "Contents/section")
		if !ok {
			continue
		}
		numPart, ok := strings.CutSuffix(rest, ".xml")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		secs = append(secs, section{f.Name, n})
	}
	sort.Slice(secs, func(i, j int) bool { return secs[i].n < secs[j].n })

	names := make([]string, len(secs))
	for i, s := range secs {
		names[i] = s.name
	}
	return names
}

func extractSection(zr *zip.Reader, name string, doc *document.Document) error {
	f, err := zr.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			var p paragraph
			if err := dec.DecodeElement(&p, &start); err != nil {
				return fmt.Errorf("failed to decode paragraph in %s: %w", name, err)
			}
			p.emit(doc)
		case "tbl":
			var tbl tableElement
			if err := dec.DecodeElement(&tbl, &start); err != nil {
				return fmt.Errorf("failed to decode table in %s: %w", name, err)
			}
			doc.AddTable(tbl.toTable())
		}
	}
}

type paragraph struct {
	XMLName xml.Name `xml:"p"`
	Runs    []run    `xml:"run"`
}

// emit writes the paragraph's text and any run-anchored tables in run
// order, so a table lands between the text that precedes and follows it,
// matching the binary reader's anchor placement.
func (p *paragraph) emit(doc *document.Document) {
	var sb strings.Builder
	wrote := false
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		doc.AddParagraph(document.KindBody, sb.String())
		sb.Reset()
		wrote = true
	}

	for _, r := range p.Runs {
		sb.WriteString(r.text())
		if r.Table != nil {
			flush()
			doc.AddTable(r.Table.toTable())
			wrote = true
		}
	}
	if sb.Len() > 0 || !wrote {
		doc.AddParagraph(document.KindBody, sb.String())
	}
}

// text renders the paragraph for table cells, where everything stays in
// one string.
func (p *paragraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.text())
	}
	return sb.String()
}

type run struct {
	XMLName   xml.Name      `xml:"run"`
	Texts     []textNode    `xml:"t"`
	LineBreak *lineBreak    `xml:"lineBreak"`
	Table     *tableElement `xml:"tbl"`
}

func (r *run) text() string {
	var sb strings.Builder
	for _, t := range r.Texts {
		sb.WriteString(t.Value)
	}
	if r.LineBreak != nil {
		sb.WriteByte('\n')
	}
	return sb.String()
}

type textNode struct {
	XMLName xml.Name `xml:"t"`
	Value   string   `xml:",chardata"`
}

type lineBreak struct {
	XMLName xml.Name `xml:"lineBreak"`
}

type tableElement struct {
	XMLName xml.Name   `xml:"tbl"`
	RowCnt  int        `xml:"rowCnt,attr"`
	ColCnt  int        `xml:"colCnt,attr"`
	Rows    []tableRow `xml:"tr"`
}

func (t *tableElement) toTable() *document.Table {
	out := &document.Table{Rows: t.RowCnt, Cols: t.ColCnt}
	for _, tr := range t.Rows {
		for _, tc := range tr.Cells {
			out.Cells = append(out.Cells, tc.toCell())
		}
	}
	return out
}

type tableRow struct {
	XMLName xml.Name    `xml:"tr"`
	Cells   []tableCell `xml:"tc"`
}

type tableCell struct {
	XMLName  xml.Name `xml:"tc"`
	CellAddr cellAddr `xml:"cellAddr"`
	CellSpan cellSpan `xml:"cellSpan"`
	SubList  subList  `xml:"subList"`
}

func (tc *tableCell) toCell() document.Cell {
	cell := document.Cell{
		Row:     tc.CellAddr.RowAddr,
		Col:     tc.CellAddr.ColAddr,
		RowSpan: tc.CellSpan.RowSpan,
		ColSpan: tc.CellSpan.ColSpan,
	}
	if cell.RowSpan < 1 {
		cell.RowSpan = 1
	}
	if cell.ColSpan < 1 {
		cell.ColSpan = 1
	}

	var parts []string
	for _, p := range tc.SubList.Paragraphs {
		if text := p.text(); text != "" {
			parts = append(parts, text)
		}
	}
	cell.Text = strings.Join(parts, "\n")
	return cell
}

type subList struct {
	XMLName    xml.Name    `xml:"subList"`
	Paragraphs []paragraph `xml:"p"`
}

type cellAddr struct {
	XMLName xml.Name `xml:"cellAddr"`
	ColAddr int      `xml:"colAddr,attr"`
	RowAddr int      `xml:"rowAddr,attr"`
}

type cellSpan struct {
	XMLName xml.Name `xml:"cellSpan"`
	ColSpan int      `xml:"colSpan,attr"`
	RowSpan int      `xml:"rowSpan,attr"`
}
