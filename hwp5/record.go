package hwp5

import (
	"encoding/binary"
	"fmt"
)

// Record tag IDs. DocInfo and section streams share the same header
// encoding but use different tag ranges.
const (
	tagBegin                   = 0x10
	tagDocumentProperties      = tagBegin
	tagDistributeDocData       = tagBegin + 12
	tagParaHeader              = tagBegin + 50
	tagParaText                = tagBegin + 51
	tagParaCharShape           = tagBegin + 52
	tagParaLineSeg             = tagBegin + 53
	tagParaRangeTag            = tagBegin + 54
	tagCtrlHeader              = tagBegin + 55
	tagListHeader              = tagBegin + 56
	tagPageDef                 = tagBegin + 57
	tagFootnoteShape           = tagBegin + 58
	tagPageBorderFill          = tagBegin + 59
	tagShapeComponent          = tagBegin + 60
	tagTable                   = tagBegin + 61
	tagShapeComponentPicture   = tagBegin + 69
	tagShapeComponentContainer = tagBegin + 70
	tagCtrlData                = tagBegin + 71
	tagEqEdit                  = tagBegin + 72
	tagMemoShape               = tagBegin + 76
	tagMemoList                = tagBegin + 77
)

// Record is one node of the parsed record forest. The payload is a slice
// into the decoded stream buffer, valid only for the lifetime of one
// extraction pass. Unknown tags are preserved as opaque leaves.
type Record struct {
	Tag      uint16
	Level    uint16
	Data     []byte
	Children []*Record
}

// Forest holds the top-level records of one stream. A non-nil Fault means
// the stream was malformed at some offset and the forest holds everything
// fully parsed before that point.
type Forest struct {
	Roots []*Record
	Fault *RecordFormatError
}

// Truncated reports whether the forest is a partial result.
func (f *Forest) Truncated() bool { return f.Fault != nil }

// ReadRecords parses a decoded stream into a record forest.
//
// Each record starts with a 4-byte little-endian header packing the tag
// (bits 0-9), nesting level (bits 10-19) and payload size (bits 20-31);
// a size of 0xFFF escapes to a trailing uint32 payload size. Nesting is
// reconstructed from the level field with a parent stack, since the format
// carries no explicit tree structure.
//
// Corruption never fails the call: a header or payload running past the
// end of the buffer truncates the forest there, recording the fault.
func ReadRecords(data []byte) *Forest {
	f := &Forest{}
	var stack []*Record

	pos := 0
	for pos < len(data) {
		start := pos
		if pos+4 > len(data) {
			f.Fault = &RecordFormatError{Offset: start, Reason: "truncated record header"}
			break
		}
		headerRaw := binary.LittleEndian.Uint32(data[pos:])
		pos += 4

		tag := uint16(headerRaw & 0x3ff)
		level := uint16((headerRaw >> 10) & 0x3ff)
		size := (headerRaw >> 20) & 0xfff
		if size == 0xfff {
			if pos+4 > len(data) {
				f.Fault = &RecordFormatError{Offset: start, Reason: "truncated extended size"}
				break
			}
			size = binary.LittleEndian.Uint32(data[pos:])
			pos += 4
		}

		if uint64(pos)+uint64(size) > uint64(len(data)) {
			f.Fault = &RecordFormatError{
				Offset: start,
				Reason: fmt.Sprintf("payload of %d bytes runs past end of stream (tag 0x%x)", size, tag),
			}
			break
		}
		rec := &Record{Tag: tag, Level: level, Data: data[pos : pos+int(size)]}
		pos += int(size)

		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			f.Roots = append(f.Roots, rec)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, rec)
		}
		stack = append(stack, rec)
	}
	return f
}

// find returns the first direct child with the given tag, or nil.
func (r *Record) find(tag uint16) *Record {
	for _, ch := range r.Children {
		if ch.Tag == tag {
			return ch
		}
	}
	return nil
}

// findAll returns the direct children with the given tag, in stream order.
func (r *Record) findAll(tag uint16) []*Record {
	var out []*Record
	for _, ch := range r.Children {
		if ch.Tag == tag {
			out = append(out, ch)
		}
	}
	return out
}
