package document

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

var cellEscaper = strings.NewReplacer("|", "\\|", "\r\n", " ", "\n", " ", "\r", " ")

// Markdown renders the table as a GitHub-flavored markdown table: one
// pipe-delimited line per row, a dash separator synthesized after the first
// row, and a consistent column count with empty cells padding short rows.
// Spanned cells occupy their anchor position; covered positions render
// empty. Columns are padded to equal display width so the Korean/CJK output
// stays readable as plain text.
func (t *Table) Markdown() string {
	rows, cols := t.extent()
	if rows == 0 || cols == 0 {
		return ""
	}

	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
	}
	for _, c := range t.Cells {
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			continue
		}
		grid[c.Row][c.Col] = cellEscaper.Replace(strings.TrimSpace(c.Text))
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range grid {
		for i, text := range row {
			if w := runewidth.StringWidth(text); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for r, row := range grid {
		writeMarkdownRow(&sb, row, widths)
		if r == 0 {
			sep := make([]string, cols)
			for i := range sep {
				sep[i] = strings.Repeat("-", widths[i])
			}
			writeMarkdownRow(&sb, sep, widths)
		}
	}
	return sb.String()
}

func writeMarkdownRow(sb *strings.Builder, cells []string, widths []int) {
	sb.WriteString("|")
	for i, text := range cells {
		sb.WriteString(" ")
		sb.WriteString(text)
		if pad := widths[i] - runewidth.StringWidth(text); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// extent returns the effective grid size: the declared dimensions grown to
// cover every cell's anchor plus span.
func (t *Table) extent() (rows, cols int) {
	rows, cols = t.Rows, t.Cols
	for _, c := range t.Cells {
		rs, cs := c.RowSpan, c.ColSpan
		if rs < 1 {
			rs = 1
		}
		if cs < 1 {
			cs = 1
		}
		if c.Row+rs > rows {
			rows = c.Row + rs
		}
		if c.Col+cs > cols {
			cols = c.Col + cs
		}
	}
	return rows, cols
}
