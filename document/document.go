// Package document holds the format-independent result model shared by the
// HWP, HWPX and HWPML readers: an ordered sequence of text blocks, each
// tagged with its structural origin, plus tables with cell span metadata.
package document

import "strings"

// BlockKind identifies the structural origin of a block.
type BlockKind int

const (
	KindBody BlockKind = iota
	KindHeader
	KindFooter
	KindFootnote
	KindEndnote
	KindTextBox
	KindComment
	KindTable
)

func (k BlockKind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindHeader:
		return "header"
	case KindFooter:
		return "footer"
	case KindFootnote:
		return "footnote"
	case KindEndnote:
		return "endnote"
	case KindTextBox:
		return "textbox"
	case KindComment:
		return "comment"
	case KindTable:
		return "table"
	}
	return "unknown"
}

// Block is one unit of extracted content. Table is non-nil only for
// KindTable blocks; all other kinds carry paragraph text.
type Block struct {
	Kind  BlockKind
	Text  string
	Table *Table
}

// Table represents a table with cells addressed on a row/column grid.
type Table struct {
	Rows  int
	Cols  int
	Cells []Cell
}

// Cell represents a table cell. Row and Col address the top-left grid
// position; spans of 0 are treated as 1.
type Cell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
	Text    string
}

// Document is the output of one extraction pass. Blocks are in document
// reading order; anchored material (headers, notes, box text) appears at
// its point of reference. Warnings records recoverable corruption that was
// tolerated during extraction.
type Document struct {
	Blocks   []Block
	Warnings []string
}

// AddParagraph appends a paragraph block of the given kind.
func (d *Document) AddParagraph(kind BlockKind, text string) {
	d.Blocks = append(d.Blocks, Block{Kind: kind, Text: text})
}

// AddTable appends a table block.
func (d *Document) AddTable(t *Table) {
	d.Blocks = append(d.Blocks, Block{Kind: KindTable, Table: t})
}

// Warn records a recoverable-corruption warning.
func (d *Document) Warn(msg string) {
	d.Warnings = append(d.Warnings, msg)
}

// Text renders the document as plain text. Body paragraphs become their
// text followed by a newline; an empty paragraph keeps its blank line.
// Non-body paragraphs are prefixed with a bracketed origin marker so
// supplementary text stays distinguishable. Tables render as
// GitHub-flavored markdown at their block position.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, b := range d.Blocks {
		if b.Table != nil {
			sb.WriteString(b.Table.Markdown())
			continue
		}
		if b.Kind != KindBody {
			sb.WriteString("[")
			sb.WriteString(b.Kind.String())
			sb.WriteString("]")
			if b.Text != "" {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(b.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Tables returns every table in the document, in block order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, b := range d.Blocks {
		if b.Table != nil {
			tables = append(tables, b.Table)
		}
	}
	return tables
}
