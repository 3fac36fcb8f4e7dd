// Package compress decides whether serialized cache payloads are worth
// compressing and performs the gzip round trip for the cache envelope.
package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// DefaultThresholdBytes is the serialized size above which payloads are
// compressed before being written to the key-value cache.
const DefaultThresholdBytes = 1024

// ShouldCompress reports whether a serialized payload of the given size
// should be compressed before storage.
func ShouldCompress(serializedSize, thresholdBytes int) bool {
	return serializedSize > thresholdBytes
}

// Compress gzips the payload. Empty input round-trips to empty output.
func Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize compression: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress exactly.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed payload: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	return out, nil
}
