package hwptest

import (
	"bytes"
	"compress/flate"
	"crypto/aes"
	"encoding/binary"
	"unicode/utf16"
)

// FileHeader flag bits.
const (
	FlagCompressed    = 0x1
	FlagPassword      = 0x2
	FlagDistribution  = 0x4
	FlagDRM           = 0x10
	FlagCertEncrypted = 0x100
)

// Record tags used by fixtures.
const (
	TagDocumentProperties = 0x10
	TagDistributeDocData  = 0x10 + 12
	TagParaHeader         = 0x10 + 50
	TagParaText           = 0x10 + 51
	TagCtrlHeader         = 0x10 + 55
	TagListHeader         = 0x10 + 56
	TagTable              = 0x10 + 61
	TagEqEdit             = 0x10 + 72
)

// Four-character control IDs as stored in CTRL_HEADER payloads.
const (
	IDTable    = 0x74626c20
	IDShape    = 0x67736f20
	IDHeader   = 0x68656164
	IDFooter   = 0x666f6f74
	IDFootnote = 0x666e2020
	IDEndnote  = 0x656e2020
	IDComment  = 0x74636d74
	IDEquation = 0x65716564
)

// FileHeader builds the 256-byte FileHeader stream payload with the given
// property flags.
func FileHeader(flags uint32) []byte {
	b := make([]byte, 256)
	copy(b, "HWP Document File")
	binary.LittleEndian.PutUint32(b[32:], 0x05000500) // 5.0.5.0
	binary.LittleEndian.PutUint32(b[36:], flags)
	return b
}

// Record encodes one record: the packed 4-byte header followed by the
// payload. Payloads of 0xFFF bytes or more use the extended-size form.
func Record(tag, level uint16, payload []byte) []byte {
	size := uint32(len(payload))
	packed := uint32(tag)&0x3ff | (uint32(level)&0x3ff)<<10
	var head []byte
	if size >= 0xfff {
		head = make([]byte, 8)
		binary.LittleEndian.PutUint32(head, packed|0xfff<<20)
		binary.LittleEndian.PutUint32(head[4:], size)
	} else {
		head = make([]byte, 4)
		binary.LittleEndian.PutUint32(head, packed|size<<20)
	}
	return append(head, payload...)
}

// UTF16 returns the UTF-16LE encoding of s.
func UTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(units))
	for i, cu := range units {
		binary.LittleEndian.PutUint16(b[2*i:], cu)
	}
	return b
}

// Control returns the 16-byte extended or inline control sequence for a
// paragraph-text control code.
func Control(code uint16) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b, code)
	binary.LittleEndian.PutUint16(b[14:], code)
	return b
}

// Paragraph builds a paragraph subtree at the given level: a PARA_HEADER
// record with one PARA_TEXT child holding the text.
func Paragraph(level uint16, text string) []byte {
	p := Record(TagParaHeader, level, make([]byte, 22))
	return append(p, Record(TagParaText, level+1, UTF16(text))...)
}

// DocInfo builds a DocInfo stream declaring the given section count.
func DocInfo(sections uint16) []byte {
	props := make([]byte, 26)
	binary.LittleEndian.PutUint16(props, sections)
	return Record(TagDocumentProperties, 0, props)
}

// Ctrl builds a CTRL_HEADER payload carrying the given control ID.
func Ctrl(id uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, id)
	return b
}

// TableHead builds a TABLE record payload declaring the grid size.
func TableHead(rows, cols uint16) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[4:], rows)
	binary.LittleEndian.PutUint16(b[6:], cols)
	return b
}

// TableCell builds a cell LIST_HEADER payload with the given grid
// placement.
func TableCell(col, row, colSpan, rowSpan uint16) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[8:], col)
	binary.LittleEndian.PutUint16(b[10:], row)
	binary.LittleEndian.PutUint16(b[12:], colSpan)
	binary.LittleEndian.PutUint16(b[14:], rowSpan)
	return b
}

// Deflate compresses b as a raw deflate stream.
func Deflate(b []byte) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(b); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// EncryptDistribution builds a ViewText section stream: the
// DISTRIBUTE_DOC_DATA record whose payload hides key under the rand()
// mask seeded with seed, followed by the AES-128-ECB ciphertext of body.
// The body is zero-padded to a whole number of blocks before encryption.
func EncryptDistribution(seed uint32, key, body []byte) []byte {
	dist := make([]byte, 256)
	binary.LittleEndian.PutUint32(dist, seed)

	mask := randMask(seed)
	offset := int(seed&0x0F) + 4
	for i := 0; i < 16; i++ {
		dist[offset+i] = key[i] ^ mask[offset+i]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	padded := make([]byte, (len(body)+15)/16*16)
	copy(padded, body)
	for i := 0; i < len(padded); i += 16 {
		block.Encrypt(padded[i:i+16], padded[i:i+16])
	}

	return append(Record(TagDistributeDocData, 0, dist), padded...)
}

// randMask expands an MSVC rand() sequence into the 256-byte XOR mask
// used by the distribution key block: each value is repeated for a count
// drawn from the next value's low nibble plus one.
func randMask(seed uint32) []byte {
	mask := make([]byte, 256)
	state := seed
	next := func() uint32 {
		state = state*214013 + 2531011
		return (state >> 16) & 0x7FFF
	}
	for i := 0; i < len(mask); {
		v := byte(next() & 0xFF)
		n := int(next()&0x0F) + 1
		for j := 0; j < n && i < len(mask); j++ {
			mask[i] = v
			i++
		}
	}
	return mask
}

// Doc assembles a complete single-section document with the given header
// flags. docInfo and section are the raw record streams; when
// FlagCompressed is set the caller passes them through Deflate first.
func Doc(flags uint32, docInfo, section []byte) []byte {
	name := "BodyText/Section0"
	if flags&FlagDistribution != 0 {
		name = "ViewText/Section0"
	}
	return CompoundFile([]Stream{
		{Path: "FileHeader", Data: FileHeader(flags)},
		{Path: "DocInfo", Data: docInfo},
		{Path: name, Data: section},
	})
}
