package hwp5

import (
	"testing"

	"github.com/dawoolim/hwptext/internal/hwptest"
)

func TestParseFileHeader(t *testing.T) {
	hdr, err := parseFileHeader(hwptest.FileHeader(hwptest.FlagCompressed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if hdr.Signature != "HWP Document File" {
		t.Errorf("signature = %q", hdr.Signature)
	}
	if got := hdr.Version.String(); got != "5.0.5.0" {
		t.Errorf("version = %q, want 5.0.5.0", got)
	}
	if !hdr.Properties.Compressed() || hdr.Properties.Distribution() {
		t.Errorf("flags misread: %#x", hdr.Properties.Raw)
	}
}

func TestFilePropertiesProtectionScheme(t *testing.T) {
	tests := []struct {
		flags uint32
		want  string
	}{
		{0, ""},
		{hwptest.FlagCompressed, ""},
		{hwptest.FlagDistribution, ""},
		{hwptest.FlagPassword, "password"},
		{hwptest.FlagDRM, "drm"},
		{hwptest.FlagCertEncrypted, "certificate"},
		// Password wins when several protection bits are set.
		{hwptest.FlagPassword | hwptest.FlagDRM, "password"},
	}
	for _, tc := range tests {
		p := FileProperties{Raw: tc.flags}
		if got := p.ProtectionScheme(); got != tc.want {
			t.Errorf("flags %#x: scheme = %q, want %q", tc.flags, got, tc.want)
		}
	}
}

func TestParseFileHeaderRejects(t *testing.T) {
	if _, err := parseFileHeader(make([]byte, 100)); err == nil {
		t.Error("short header accepted")
	}

	bad := hwptest.FileHeader(0)
	copy(bad, "HWPX Document?")
	if _, err := parseFileHeader(bad); err == nil {
		t.Error("wrong signature accepted")
	}
}
