package hwp5

import (
	"errors"
	"fmt"
)

// ErrStreamNotFound reports a stream path absent from the container
// directory. Section streams that are missing are skipped by the extraction
// pipeline rather than treated as fatal.
var ErrStreamNotFound = errors.New("stream not found")

// ContainerFormatError reports an unreadable or corrupt compound container:
// bad magic, inconsistent directory structure, or a missing/invalid
// FileHeader stream.
type ContainerFormatError struct {
	Reason string
	Err    error
}

func (e *ContainerFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("container format: %s: %v", e.Reason, e.Err)
	}
	return "container format: " + e.Reason
}

func (e *ContainerFormatError) Unwrap() error { return e.Err }

// UnsupportedProtectionError reports a recognized but unsupported document
// protection scheme (password, DRM, certificate encryption). Distribution
// documents are not affected; their encryption is handled transparently.
type UnsupportedProtectionError struct {
	Scheme string
}

func (e *UnsupportedProtectionError) Error() string {
	return fmt.Sprintf("unsupported protection scheme %q", e.Scheme)
}

// DecryptionError reports missing or malformed key-derivation inputs for a
// distribution document. Ciphertext shape never triggers it: ECB mode has
// no integrity check, so a trailing partial block is decrypted best-effort.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return "decryption: " + e.Reason
}

// DecompressionError reports malformed deflate input in a compressed
// stream.
type DecompressionError struct {
	Stream string
	Err    error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompress %s: %v", e.Stream, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// RecordFormatError reports a malformed record stream: a header or declared
// payload running past the end of the buffer. The record parser recovers by
// truncating, so this surfaces as the Fault of a partial Forest rather than
// as a returned error.
type RecordFormatError struct {
	Offset int
	Reason string
}

func (e *RecordFormatError) Error() string {
	return fmt.Sprintf("record format: %s at offset %d", e.Reason, e.Offset)
}
