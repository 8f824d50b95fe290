package hwp5

import (
	"bytes"
	"compress/flate"
	"io"
)

// inflate decompresses a raw deflate stream (no zlib framing, matching the
// format's convention for embedded streams). When compressed is false the
// input passes through unchanged.
func inflate(data []byte, compressed bool, stream string) ([]byte, error) {
	if !compressed {
		return data, nil
	}

	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, &DecompressionError{Stream: stream, Err: err}
	}
	return out, nil
}
