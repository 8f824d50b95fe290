// Package hwptest builds in-memory HWP fixtures for the reader tests:
// a minimal compound-file writer plus encoders for record streams and
// the distribution-document key block.
package hwptest

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	// Streams below the cutoff live on mini sectors inside the root
	// entry's ministream, the way real writers place them. Declared
	// sizes are always the true data length.
	miniCutoff = 4096

	secEndOfChain = 0xFFFFFFFE
	secFAT        = 0xFFFFFFFD
	secFree       = 0xFFFFFFFF
	dirNone       = 0xFFFFFFFF
)

// Stream is one named stream to place in a compound file. Path components
// are separated by "/"; a single leading component becomes a storage.
type Stream struct {
	Path string
	Data []byte
}

type dirEntry struct {
	name  string
	typ   byte
	child int
	right int
	start uint32
	size  uint64
	data  []byte
}

// CompoundFile assembles a version-3 compound file holding the given
// streams. Streams shorter than the mini-stream cutoff are packed into
// the ministream on 64-byte mini sectors; longer ones take whole regular
// sectors. Directory sizes are exact, so readers see precisely the bytes
// that went in.
func CompoundFile(streams []Stream) []byte {
	entries := []*dirEntry{{name: "Root Entry", typ: 5, child: -1, right: -1, start: secEndOfChain}}
	var rootKids []int
	storageAt := make(map[string]int)
	storageKids := make(map[int][]int)

	for _, s := range streams {
		parent := 0
		name := s.Path
		if dir, base, ok := strings.Cut(s.Path, "/"); ok {
			si, seen := storageAt[dir]
			if !seen {
				si = len(entries)
				entries = append(entries, &dirEntry{name: dir, typ: 1, child: -1, right: -1, start: secEndOfChain})
				storageAt[dir] = si
				rootKids = append(rootKids, si)
			}
			parent, name = si, base
		}
		idx := len(entries)
		entries = append(entries, &dirEntry{name: name, typ: 2, child: -1, right: -1, data: s.Data})
		if parent == 0 {
			rootKids = append(rootKids, idx)
		} else {
			storageKids[parent] = append(storageKids[parent], idx)
		}
	}

	// Siblings form a right-leaning chain, which readers traverse as
	// insertion order.
	link := func(kids []int) int {
		if len(kids) == 0 {
			return -1
		}
		for i := 0; i+1 < len(kids); i++ {
			entries[kids[i]].right = kids[i+1]
		}
		return kids[0]
	}
	entries[0].child = link(rootKids)
	for si, kids := range storageKids {
		entries[si].child = link(kids)
	}

	// Pack sub-cutoff streams into the ministream, each starting on a
	// fresh mini sector. Readers locate a stream by comparing its size
	// against the cutoff, so the declared size decides which FAT resolves
	// the start sector.
	var mini []byte
	for _, e := range entries {
		if e.typ != 2 {
			continue
		}
		e.size = uint64(len(e.data))
		switch {
		case len(e.data) == 0:
			e.start = secEndOfChain
		case len(e.data) < miniCutoff:
			e.start = uint32(len(mini) / miniSectorSize)
			mini = append(mini, e.data...)
			if rem := len(mini) % miniSectorSize; rem != 0 {
				mini = append(mini, make([]byte, miniSectorSize-rem)...)
			}
		}
	}

	// Sector layout: directory first, then large stream chains, the
	// ministream, the miniFAT, and the FAT at the end.
	dirSectors := (len(entries) + 3) / 4
	next := dirSectors
	for _, e := range entries {
		if e.typ == 2 && len(e.data) >= miniCutoff {
			e.start = uint32(next)
			next += (len(e.data) + sectorSize - 1) / sectorSize
		}
	}
	miniStart := next
	miniSectors := (len(mini) + sectorSize - 1) / sectorSize
	next += miniSectors
	miniFATStart := next
	miniFATSectors := (len(mini)/miniSectorSize + 127) / 128
	next += miniFATSectors
	if len(mini) > 0 {
		entries[0].start = uint32(miniStart)
		entries[0].size = uint64(len(mini))
	}

	fatSectors := 1
	for (next+fatSectors+127)/128 > fatSectors {
		fatSectors++
	}
	total := next + fatSectors

	fat := make([]uint32, fatSectors*128)
	for i := range fat {
		fat[i] = secFree
	}
	chain := func(start, n int) {
		for i := 0; i < n-1; i++ {
			fat[start+i] = uint32(start + i + 1)
		}
		fat[start+n-1] = secEndOfChain
	}
	chain(0, dirSectors)
	for _, e := range entries {
		if e.typ == 2 && len(e.data) >= miniCutoff {
			chain(int(e.start), (len(e.data)+sectorSize-1)/sectorSize)
		}
	}
	if miniSectors > 0 {
		chain(miniStart, miniSectors)
	}
	if miniFATSectors > 0 {
		chain(miniFATStart, miniFATSectors)
	}
	for i := 0; i < fatSectors; i++ {
		fat[next+i] = secFAT
	}

	miniFAT := make([]uint32, miniFATSectors*128)
	for i := range miniFAT {
		miniFAT[i] = secFree
	}
	for _, e := range entries {
		if e.typ == 2 && len(e.data) > 0 && len(e.data) < miniCutoff {
			n := (len(e.data) + miniSectorSize - 1) / miniSectorSize
			for i := 0; i < n-1; i++ {
				miniFAT[int(e.start)+i] = e.start + uint32(i) + 1
			}
			miniFAT[int(e.start)+n-1] = secEndOfChain
		}
	}

	out := make([]byte, sectorSize+total*sectorSize)
	writeHeader(out, fatSectors, next, miniFATStart, miniFATSectors)
	for i, e := range entries {
		writeDirEntry(out[sectorSize+128*i:], e)
	}
	for _, e := range entries {
		if e.typ == 2 && len(e.data) >= miniCutoff {
			copy(out[sectorSize+int(e.start)*sectorSize:], e.data)
		}
	}
	copy(out[sectorSize+miniStart*sectorSize:], mini)
	for i, v := range miniFAT {
		binary.LittleEndian.PutUint32(out[sectorSize+miniFATStart*sectorSize+4*i:], v)
	}
	for i, v := range fat {
		binary.LittleEndian.PutUint32(out[sectorSize+next*sectorSize+4*i:], v)
	}
	return out
}

func writeHeader(out []byte, fatSectors, firstFAT, firstMiniFAT, miniFATSectors int) {
	copy(out, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	binary.LittleEndian.PutUint16(out[24:], 0x3E)   // minor version
	binary.LittleEndian.PutUint16(out[26:], 3)      // major version
	binary.LittleEndian.PutUint16(out[28:], 0xFFFE) // byte order
	binary.LittleEndian.PutUint16(out[30:], 9)      // 512-byte sectors
	binary.LittleEndian.PutUint16(out[32:], 6)      // 64-byte mini sectors
	binary.LittleEndian.PutUint32(out[44:], uint32(fatSectors))
	binary.LittleEndian.PutUint32(out[48:], 0) // directory starts at sector 0
	binary.LittleEndian.PutUint32(out[56:], miniCutoff)
	if miniFATSectors > 0 {
		binary.LittleEndian.PutUint32(out[60:], uint32(firstMiniFAT))
		binary.LittleEndian.PutUint32(out[64:], uint32(miniFATSectors))
	} else {
		binary.LittleEndian.PutUint32(out[60:], secEndOfChain)
		binary.LittleEndian.PutUint32(out[64:], 0)
	}
	binary.LittleEndian.PutUint32(out[68:], secEndOfChain) // no DIFAT sectors
	binary.LittleEndian.PutUint32(out[72:], 0)
	for i := 0; i < 109; i++ {
		v := uint32(secFree)
		if i < fatSectors {
			v = uint32(firstFAT + i)
		}
		binary.LittleEndian.PutUint32(out[76+4*i:], v)
	}
}

func writeDirEntry(b []byte, e *dirEntry) {
	units := utf16.Encode([]rune(e.name))
	for i, cu := range units {
		binary.LittleEndian.PutUint16(b[2*i:], cu)
	}
	binary.LittleEndian.PutUint16(b[64:], uint16((len(units)+1)*2))
	b[66] = e.typ
	b[67] = 1 // black
	putID := func(off, id int) {
		if id < 0 {
			binary.LittleEndian.PutUint32(b[off:], dirNone)
		} else {
			binary.LittleEndian.PutUint32(b[off:], uint32(id))
		}
	}
	putID(68, -1) // left sibling
	putID(72, e.right)
	putID(76, e.child)
	binary.LittleEndian.PutUint32(b[116:], e.start)
	binary.LittleEndian.PutUint64(b[120:], e.size)
}
