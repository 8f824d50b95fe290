package hwp5

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const signatureText = "HWP Document File"

// fileHeaderSize is the fixed size of the FileHeader stream.
const fileHeaderSize = 256

// Version stores the four-part HWP version number (MM.nn.PP.rr).
type Version struct {
	Major byte
	Minor byte
	Patch byte
	Rev   byte
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Rev)
}

// FileProperties exposes the FileHeader flag bits that drive the decoding
// pipeline.
type FileProperties struct {
	Raw uint32
}

func (p FileProperties) Compressed() bool   { return p.Raw&0x1 != 0 }
func (p FileProperties) Password() bool     { return p.Raw&0x2 != 0 }
func (p FileProperties) Distribution() bool { return p.Raw&0x4 != 0 }
func (p FileProperties) DRM() bool          { return p.Raw&0x10 != 0 }
func (p FileProperties) CertEncrypted() bool {
	return p.Raw&0x100 != 0
}

// ProtectionScheme names the unsupported protection applied to the
// document, or "" when the document can be decoded. The distribution
// scheme is supported and does not count.
func (p FileProperties) ProtectionScheme() string {
	switch {
	case p.Password():
		return "password"
	case p.CertEncrypted():
		return "certificate"
	case p.DRM():
		return "drm"
	}
	return ""
}

// FileHeader mirrors the fixed 256-byte FileHeader stream.
type FileHeader struct {
	Signature      string
	Version        Version
	Properties     FileProperties
	SecondFlags    uint32
	EncryptVersion uint32
}

func parseFileHeader(data []byte) (FileHeader, error) {
	var hdr FileHeader
	if len(data) < fileHeaderSize {
		return hdr, fmt.Errorf("file header too short (%d bytes)", len(data))
	}

	hdr.Signature = string(bytes.TrimRight(data[:32], "\x00"))
	if hdr.Signature != signatureText {
		return hdr, fmt.Errorf("unexpected signature %q", hdr.Signature)
	}

	ver := binary.LittleEndian.Uint32(data[32:36])
	hdr.Version = Version{
		Major: byte(ver >> 24),
		Minor: byte(ver >> 16),
		Patch: byte(ver >> 8),
		Rev:   byte(ver),
	}
	hdr.Properties.Raw = binary.LittleEndian.Uint32(data[36:40])
	hdr.SecondFlags = binary.LittleEndian.Uint32(data[40:44])
	hdr.EncryptVersion = binary.LittleEndian.Uint32(data[44:48])
	return hdr, nil
}
