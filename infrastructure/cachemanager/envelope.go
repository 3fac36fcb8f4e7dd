package cachemanager

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/souqtrack/souqtrack/pkg/compress"
)

// envelope is the wire format stored in the key-value cache:
// {"data": <payload>, "metadata": {"cachedAt": epoch-ms, "ttl": seconds, "compressed": bool}}.
// When compressed, the entire JSON document is gzipped and stored as base64.
type envelope struct {
	Data     json.RawMessage  `json:"data"`
	Metadata envelopeMetadata `json:"metadata"`
}

type envelopeMetadata struct {
	CachedAt   int64 `json:"cachedAt"` // epoch milliseconds
	TTL        int   `json:"ttl"`
	Compressed bool  `json:"compressed"`
}

// encodeEnvelope wraps the serialized payload and compresses the whole
// document when it crosses the size threshold.
func encodeEnvelope(data json.RawMessage, cachedAtMs int64, ttlSeconds int) (string, error) {
	env := envelope{
		Data: data,
		Metadata: envelopeMetadata{
			CachedAt:   cachedAtMs,
			TTL:        ttlSeconds,
			Compressed: false,
		},
	}

	doc, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache envelope: %w", err)
	}

	if !compress.ShouldCompress(len(doc), compress.DefaultThresholdBytes) {
		return string(doc), nil
	}

	env.Metadata.Compressed = true
	doc, err = json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache envelope: %w", err)
	}
	packed, err := compress.Compress(doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(packed), nil
}

// decodeEnvelope reverses encodeEnvelope. A value that does not open a JSON
// object is treated as a base64-encoded compressed document.
func decodeEnvelope(stored string) (*envelope, error) {
	raw := []byte(stored)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty cache value")
	}

	if raw[0] != '{' {
		packed, err := base64.StdEncoding.DecodeString(stored)
		if err != nil {
			return nil, fmt.Errorf("failed to decode compressed cache value: %w", err)
		}
		raw, err = compress.Decompress(packed)
		if err != nil {
			return nil, err
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache envelope: %w", err)
	}
	return &env, nil
}
