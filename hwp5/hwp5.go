// Package hwp5 reads HWP version 5 documents: OLE compound files holding
// record streams that are optionally deflate-compressed and, for
// distribution documents, block-encrypted. It extracts paragraph text,
// tables, headers, footers, notes and box text into the shared document
// model, tolerating damaged record streams by keeping what was readable
// and recording warnings.
package hwp5

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dawoolim/hwptext/document"
)

// Extract parses an HWP v5 document held in memory and returns its
// content. See Container.Extract for the error contract.
func Extract(data []byte) (*document.Document, error) {
	c, err := OpenContainer(data)
	if err != nil {
		return nil, err
	}
	return c.Extract()
}

// Extract walks DocInfo and the section streams and assembles the
// document content. Distribution documents are read from their ViewText
// streams after recovering the view key; password, certificate and DRM
// protected documents cannot be decoded and fail with
// UnsupportedProtectionError. Damage is confined to the section it occurs
// in: a section that fails to decrypt or decompress is skipped with a
// warning, and record-level damage truncates that section's contribution.
// Past open, only an undecodable DocInfo fails the whole document.
func (c *Container) Extract() (*document.Document, error) {
	if scheme := c.Header.Properties.ProtectionScheme(); scheme != "" {
		return nil, &UnsupportedProtectionError{Scheme: scheme}
	}

	doc := &document.Document{}
	ex := &extractor{doc: doc}

	sections, err := c.sectionCount(doc)
	if err != nil {
		return nil, err
	}

	compressed := c.Header.Properties.Compressed()
	dist := c.Header.Properties.Distribution()
	prefix := "BodyText"
	if dist {
		prefix = "ViewText"
	}

	for i := 0; i < sections; i++ {
		name := fmt.Sprintf("%s/Section%d", prefix, i)
		raw, err := c.ReadStream(name)
		if errors.Is(err, ErrStreamNotFound) {
			continue
		}
		if err != nil {
			doc.Warn(fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if dist {
			if raw, err = decryptDistribution(raw); err != nil {
				doc.Warn(fmt.Sprintf("%s: %v", name, err))
				continue
			}
		}
		body, err := inflate(raw, compressed, name)
		if err != nil {
			doc.Warn(err.Error())
			continue
		}
		forest := ReadRecords(body)
		if forest.Truncated() {
			doc.Warn(fmt.Sprintf("%s: %s", name, forest.Fault.Reason))
		}
		ex.section(forest)
	}

	doc.Warnings = append(doc.Warnings, c.Warnings...)
	return doc, nil
}

// sectionCount reads the section-stream count from the first
// DOCUMENT_PROPERTIES record of DocInfo. DocInfo is never encrypted, so
// it is read the same way for ordinary and distribution documents. A
// missing DocInfo is tolerated with a single-section default, since the
// body streams carry the actual text.
func (c *Container) sectionCount(doc *document.Document) (int, error) {
	raw, err := c.ReadStream("DocInfo")
	if errors.Is(err, ErrStreamNotFound) {
		doc.Warn("DocInfo stream missing, assuming a single section")
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	info, err := inflate(raw, c.Header.Properties.Compressed(), "DocInfo")
	if err != nil {
		return 0, err
	}

	forest := ReadRecords(info)
	if forest.Truncated() {
		doc.Warn("DocInfo: " + forest.Fault.Reason)
	}
	for _, r := range forest.Roots {
		if r.Tag == tagDocumentProperties && len(r.Data) >= 2 {
			if n := int(binary.LittleEndian.Uint16(r.Data)); n > 0 {
				return n, nil
			}
		}
	}
	return 1, nil
}
