package document

import (
	"strings"
	"testing"
)

func TestTextBodyParagraphs(t *testing.T) {
	doc := &Document{}
	doc.AddParagraph(KindBody, "안녕하세요")
	doc.AddParagraph(KindBody, "")
	doc.AddParagraph(KindBody, "둘째 문단")

	got := doc.Text()
	want := "안녕하세요\n\n둘째 문단\n"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTextKindMarkers(t *testing.T) {
	tests := []struct {
		kind BlockKind
		text string
		want string
	}{
		{KindHeader, "머리말", "[header] 머리말\n"},
		{KindFooter, "꼬리말", "[footer] 꼬리말\n"},
		{KindFootnote, "각주 내용", "[footnote] 각주 내용\n"},
		{KindEndnote, "미주 내용", "[endnote] 미주 내용\n"},
		{KindTextBox, "글상자", "[textbox] 글상자\n"},
		{KindComment, "숨은 설명", "[comment] 숨은 설명\n"},
	}

	for _, tt := range tests {
		doc := &Document{}
		doc.AddParagraph(tt.kind, tt.text)
		if got := doc.Text(); got != tt.want {
			t.Errorf("%s: Text() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestTextTableInline(t *testing.T) {
	doc := &Document{}
	doc.AddParagraph(KindBody, "before")
	doc.AddTable(&Table{
		Rows:  1,
		Cols:  2,
		Cells: []Cell{{Row: 0, Col: 0, Text: "a"}, {Row: 0, Col: 1, Text: "b"}},
	})
	doc.AddParagraph(KindBody, "after")

	got := doc.Text()
	beforeIdx := strings.Index(got, "before")
	tableIdx := strings.Index(got, "| a")
	afterIdx := strings.Index(got, "after")
	if beforeIdx < 0 || tableIdx < 0 || afterIdx < 0 {
		t.Fatalf("Missing content in output: %q", got)
	}
	if !(beforeIdx < tableIdx && tableIdx < afterIdx) {
		t.Errorf("Table not rendered at its block position: %q", got)
	}
}

func TestTables(t *testing.T) {
	doc := &Document{}
	doc.AddParagraph(KindBody, "text")
	first := &Table{Rows: 1, Cols: 1, Cells: []Cell{{Text: "1"}}}
	second := &Table{Rows: 1, Cols: 1, Cells: []Cell{{Text: "2"}}}
	doc.AddTable(first)
	doc.AddTable(second)

	tables := doc.Tables()
	if len(tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(tables))
	}
	if tables[0] != first || tables[1] != second {
		t.Error("Tables() should preserve block order")
	}
}

func TestBlockKindString(t *testing.T) {
	kinds := map[BlockKind]string{
		KindBody:     "body",
		KindHeader:   "header",
		KindFooter:   "footer",
		KindFootnote: "footnote",
		KindEndnote:  "endnote",
		KindTextBox:  "textbox",
		KindComment:  "comment",
		KindTable:    "table",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("BlockKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
