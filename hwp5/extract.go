package hwp5

import (
	"encoding/binary"
	"strings"

	"github.com/dawoolim/hwptext/document"
)

// Control IDs from the first four bytes of a CTRL_HEADER payload, read as
// a little-endian uint32. The stored value packs the control's four ASCII
// letters high byte first.
const (
	ctrlTable    = 0x74626c20 // tbl
	ctrlShape    = 0x67736f20 // gso
	ctrlHeader   = 0x68656164 // head
	ctrlFooter   = 0x666f6f74 // foot
	ctrlFootnote = 0x666e2020 // fn
	ctrlEndnote  = 0x656e2020 // en
	ctrlComment  = 0x74636d74 // tcmt
	ctrlEquation = 0x65716564 // eqed
)

// ctrlID returns a control's four-character ID, or 0 when the payload is
// too short to carry one.
func ctrlID(r *Record) uint32 {
	if len(r.Data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(r.Data)
}

// A corrupt TABLE record can declare a grid far larger than any real
// table; past this bound the declared geometry is ignored and cells are
// placed sequentially.
const maxTableCells = 1 << 20

// extractor accumulates document blocks while walking section record
// forests.
type extractor struct {
	doc *document.Document
}

func (e *extractor) section(f *Forest) {
	for _, root := range f.Roots {
		if root.Tag == tagParaHeader {
			e.paragraph(root, document.KindBody)
		}
	}
}

// pendingBlock is control content held back until the anchoring
// paragraph's own text has been emitted.
type pendingBlock struct {
	kind document.BlockKind
	ctrl *Record
}

// paragraph emits one PARA_HEADER subtree as document blocks. The
// paragraph text splits at its extended control characters and each split
// point consumes the next CTRL_HEADER child, so controls land where their
// anchor characters sat. Tables and box text are inserted at the anchor;
// header, footer, note and comment content follows the paragraph, since it
// hangs off the anchor rather than flowing with the text.
func (e *extractor) paragraph(p *Record, kind document.BlockKind) {
	segs := []textSegment{{}}
	if txt := p.find(tagParaText); txt != nil {
		segs = splitParaText(txt.Data)
	}
	ctrls := p.findAll(tagCtrlHeader)

	var sb strings.Builder
	wrote := false
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		e.doc.AddParagraph(kind, sb.String())
		sb.Reset()
		wrote = true
	}

	var pending []pendingBlock
	dispatch := func(ctrl *Record) {
		switch ctrlID(ctrl) {
		case ctrlTable:
			flush()
			e.table(ctrl)
			wrote = true
		case ctrlShape:
			flush()
			boxed := topParagraphs(ctrl)
			for _, np := range boxed {
				e.paragraph(np, document.KindTextBox)
			}
			if len(boxed) > 0 {
				wrote = true
			}
		case ctrlEquation:
			sb.WriteString(equationScript(ctrl))
		case ctrlHeader:
			pending = append(pending, pendingBlock{document.KindHeader, ctrl})
		case ctrlFooter:
			pending = append(pending, pendingBlock{document.KindFooter, ctrl})
		case ctrlFootnote:
			pending = append(pending, pendingBlock{document.KindFootnote, ctrl})
		case ctrlEndnote:
			pending = append(pending, pendingBlock{document.KindEndnote, ctrl})
		case ctrlComment:
			pending = append(pending, pendingBlock{document.KindComment, ctrl})
		default:
			// Unknown controls may still wrap paragraph lists (fields,
			// hidden descriptions). Keep their text rather than drop it.
			pending = append(pending, pendingBlock{kind, ctrl})
		}
	}

	ci := 0
	for _, seg := range segs {
		sb.WriteString(seg.text)
		if seg.ctrl && ci < len(ctrls) {
			dispatch(ctrls[ci])
			ci++
		}
	}
	// Controls beyond the last anchor character still carry content.
	for ; ci < len(ctrls); ci++ {
		dispatch(ctrls[ci])
	}

	if sb.Len() > 0 || !wrote {
		e.doc.AddParagraph(kind, sb.String())
	}

	for _, pb := range pending {
		for _, np := range topParagraphs(pb.ctrl) {
			e.paragraph(np, pb.kind)
		}
	}
}

// paragraphText renders a paragraph subtree inline, for content that must
// stay within a single cell string. Nested tables flatten to rows of
// space-joined cells and other nested content goes on its own line.
func (e *extractor) paragraphText(p *Record) string {
	segs := []textSegment{{}}
	if txt := p.find(tagParaText); txt != nil {
		segs = splitParaText(txt.Data)
	}
	ctrls := p.findAll(tagCtrlHeader)

	var sb strings.Builder
	appendLine := func(s string) {
		if s == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
	}
	dispatch := func(ctrl *Record) {
		switch ctrlID(ctrl) {
		case ctrlTable:
			appendLine(e.flattenTable(ctrl))
		case ctrlEquation:
			sb.WriteString(equationScript(ctrl))
		default:
			for _, np := range topParagraphs(ctrl) {
				appendLine(e.paragraphText(np))
			}
		}
	}

	ci := 0
	for _, seg := range segs {
		sb.WriteString(seg.text)
		if seg.ctrl && ci < len(ctrls) {
			dispatch(ctrls[ci])
			ci++
		}
	}
	for ; ci < len(ctrls); ci++ {
		dispatch(ctrls[ci])
	}
	return sb.String()
}

// table converts a table control into a document table block.
func (e *extractor) table(ctrl *Record) {
	rows, cols, cells := tableGeometry(ctrl)
	t := &document.Table{Rows: rows, Cols: cols}
	for _, c := range cells {
		c.cell.Text = e.cellText(c.lh)
		t.Cells = append(t.Cells, c.cell)
	}
	e.doc.AddTable(t)
}

// flattenTable renders a nested table as lines of space-joined cell text.
func (e *extractor) flattenTable(ctrl *Record) string {
	_, _, cells := tableGeometry(ctrl)
	var sb strings.Builder
	row := -1
	for _, c := range cells {
		switch {
		case row < 0:
		case c.cell.Row != row:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
		row = c.cell.Row
		sb.WriteString(e.cellText(c.lh))
	}
	return sb.String()
}

// cellText joins the paragraphs of one cell list.
func (e *extractor) cellText(lh *Record) string {
	var parts []string
	for _, p := range lh.findAll(tagParaHeader) {
		parts = append(parts, e.paragraphText(p))
	}
	return strings.Join(parts, "\n")
}

type tableCell struct {
	cell document.Cell
	lh   *Record
}

// tableGeometry reads a table control's grid size and per-cell placement.
// The TABLE record carries the row and column counts; each cell
// LIST_HEADER carries its column, row, column span and row span as
// consecutive uint16 fields starting at offset 8. Cells whose header is
// short or whose anchor lies outside the declared grid fall back to
// sequential placement, and spans are clamped to the grid, so damaged
// geometry degrades to a readable layout instead of failing.
func tableGeometry(ctrl *Record) (rows, cols int, cells []tableCell) {
	if tbl := ctrl.find(tagTable); tbl != nil && len(tbl.Data) >= 8 {
		rows = int(binary.LittleEndian.Uint16(tbl.Data[4:]))
		cols = int(binary.LittleEndian.Uint16(tbl.Data[6:]))
		if uint64(rows)*uint64(cols) > maxTableCells {
			rows, cols = 0, 0
		}
	}
	for i, lh := range ctrl.findAll(tagListHeader) {
		var cell document.Cell
		ok := false
		if len(lh.Data) >= 16 {
			cell.Col = int(binary.LittleEndian.Uint16(lh.Data[8:]))
			cell.Row = int(binary.LittleEndian.Uint16(lh.Data[10:]))
			cell.ColSpan = int(binary.LittleEndian.Uint16(lh.Data[12:]))
			cell.RowSpan = int(binary.LittleEndian.Uint16(lh.Data[14:]))
			ok = cell.Row < rows && cell.Col < cols
		}
		if ok {
			if cell.ColSpan < 1 {
				cell.ColSpan = 1
			}
			if cell.RowSpan < 1 {
				cell.RowSpan = 1
			}
			if cell.Col+cell.ColSpan > cols {
				cell.ColSpan = cols - cell.Col
			}
			if cell.Row+cell.RowSpan > rows {
				cell.RowSpan = rows - cell.Row
			}
		} else {
			cell = document.Cell{Row: 0, Col: i, RowSpan: 1, ColSpan: 1}
			if cols > 0 {
				cell.Row, cell.Col = i/cols, i%cols
			}
		}
		cells = append(cells, tableCell{cell: cell, lh: lh})
	}
	return rows, cols, cells
}

// topParagraphs collects the shallowest paragraph records under a control
// without descending into them; deeper paragraphs are reached through
// their own controls.
func topParagraphs(r *Record) []*Record {
	var out []*Record
	var walk func(*Record)
	walk = func(n *Record) {
		for _, ch := range n.Children {
			if ch.Tag == tagParaHeader {
				out = append(out, ch)
				continue
			}
			walk(ch)
		}
	}
	walk(r)
	return out
}

// equationScript pulls the script text out of an equation control. The
// EQEDIT payload carries a character count at offset 4 followed by the
// UTF-16 script.
func equationScript(ctrl *Record) string {
	eq := ctrl.find(tagEqEdit)
	if eq == nil || len(eq.Data) < 6 {
		return ""
	}
	raw := eq.Data[6:]
	if n := 2 * int(binary.LittleEndian.Uint16(eq.Data[4:])); n < len(raw) {
		raw = raw[:n]
	}
	return decodeUTF16(raw)
}
