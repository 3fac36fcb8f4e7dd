package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("x"),
		[]byte(`{"asin":"B0ABCDEFGH","price":129.99}`),
		bytes.Repeat([]byte("souq"), 4096),
	}

	for _, in := range cases {
		compressed, err := Compress(in)
		require.NoError(t, err)

		out, err := Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, len(in), len(out))
		assert.True(t, bytes.Equal(in, out))
	}
}

func TestShouldCompress(t *testing.T) {
	assert.False(t, ShouldCompress(0, DefaultThresholdBytes))
	assert.False(t, ShouldCompress(1024, DefaultThresholdBytes))
	assert.True(t, ShouldCompress(1025, DefaultThresholdBytes))
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("not gzip data"))
	assert.Error(t, err)
}
