package hwp5

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Control codes embedded in PARA_TEXT payloads. Code units above 31 are
// plain UTF-16 text; the rest steer the decoder.
const (
	ctrlCodeSectionColDef   uint16 = 2  // 구역 정의/단 정의
	ctrlCodeFieldStart      uint16 = 3  // 필드 시작 (누름틀, 하이퍼링크 등)
	ctrlCodeFieldEnd        uint16 = 4  // 필드 끝
	ctrlCodeTitleMark       uint16 = 8  // Title mark
	ctrlCodeTab             uint16 = 9  // 탭 (Tab)
	ctrlCodeLineBreak       uint16 = 10 // 한 줄 끝 (Line break)
	ctrlCodeGsoTable        uint16 = 11 // 그리기 개체/표 (Drawing Object/Table)
	ctrlCodeParaBreak       uint16 = 13 // 문단 끝 (Para break)
	ctrlCodeHiddenComment   uint16 = 15 // 숨은 설명
	ctrlCodeHeaderFooter    uint16 = 16 // 머리말/꼬리말
	ctrlCodeFootnoteEndnote uint16 = 17 // 각주/미주
	ctrlCodeAutoNumber      uint16 = 18 // 자동번호
	ctrlCodeHyphen          uint16 = 24 // 하이픈
	ctrlCodeBundleSpace     uint16 = 30 // 묶음 빈칸
	ctrlCodeFixedSpace      uint16 = 31 // 고정폭 빈칸
)

const (
	charKindText = iota
	charKindChar
	charKindInline
	charKindExtend
)

// charKind classifies a 16-bit code unit. Extended controls own a matching
// CTRL_HEADER record; inline and char controls are self-contained.
func charKind(code uint16) int {
	if code > 31 {
		return charKindText
	}
	switch code {
	case 1, 2, 3, 11, 12, 14, 15, 16, 17, 18, 21, 22, 23:
		return charKindExtend
	case 4, 5, 6, 7, 8, 9, 19, 20:
		return charKindInline
	}
	return charKindChar
}

// textSegment is a run of paragraph text. ctrl marks that an extended
// control followed the run, consuming the next CTRL_HEADER subtree of the
// paragraph.
type textSegment struct {
	text string
	ctrl bool
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func decodeUTF16(b []byte) string {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

// splitParaText decodes a PARA_TEXT payload into text segments split at
// every extended control, so the caller can interleave the paragraph's
// control subtrees one-for-one at the split points.
//
// Extended and inline controls occupy 8 code units (16 bytes); char
// controls occupy one. The char controls with a text equivalent map per a
// fixed table: line break to newline, tab to tab, hyphen variant to '-',
// the space variants to ' '; the paragraph-break code and reserved codes
// contribute nothing. A trailing odd byte is ignored.
func splitParaText(data []byte) []textSegment {
	var segs []textSegment
	var sb strings.Builder

	runStart := -1
	flushRun := func(end int) {
		if runStart >= 0 {
			sb.WriteString(decodeUTF16(data[runStart:end]))
			runStart = -1
		}
	}

	i := 0
	for i+2 <= len(data) {
		code := binary.LittleEndian.Uint16(data[i:])

		switch charKind(code) {
		case charKindText:
			if runStart < 0 {
				runStart = i
			}
			i += 2

		case charKindExtend:
			flushRun(i)
			i += 16
			segs = append(segs, textSegment{text: sb.String(), ctrl: true})
			sb.Reset()

		case charKindInline:
			flushRun(i)
			if code == ctrlCodeTab {
				sb.WriteByte('\t')
			}
			i += 16

		default:
			flushRun(i)
			switch code {
			case ctrlCodeLineBreak:
				sb.WriteByte('\n')
			case ctrlCodeHyphen:
				sb.WriteByte('-')
			case ctrlCodeBundleSpace, ctrlCodeFixedSpace:
				sb.WriteByte(' ')
			}
			i += 2
		}
	}
	flushRun(i)

	segs = append(segs, textSegment{text: sb.String()})
	return segs
}
