package natives

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUleb128(t *testing.T) {
	for _, n := range []uint64{0, 1, 127, 128, 300, 16384} {
		enc := appendUleb128(nil, n)
		got, read, err := uleb128(enc)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(enc), read)
	}
	assert.Equal(t, []byte{0x80, 0x01}, appendUleb128(nil, 128))

	_, _, err := uleb128([]byte{0x80})
	require.Error(t, err)
}

func TestDecodeBytes(t *testing.T) {
	long := bytes.Repeat([]byte{7}, 200)
	got, err := decodeBytes(encodeBytes(long))
	require.NoError(t, err)
	assert.Equal(t, long, got)

	_, err = decodeBytes([]byte{3, 1})
	require.Error(t, err)

	_, err = decodeString(encodeBytes([]byte{0xff}))
	require.Error(t, err)
}

func TestDecodeScalars(t *testing.T) {
	v, err := decodeU64(encodeU64(1 << 40))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), v)

	_, err = decodeU64([]byte{1})
	require.Error(t, err)

	b, err := decodeBool(encodeBool(true))
	require.NoError(t, err)
	assert.True(t, b)
	_, err = decodeBool([]byte{2})
	require.Error(t, err)
}

func TestDecodeBytesVector(t *testing.T) {
	in := [][]byte{{1, 2}, {}, {3}}
	out, err := decodeBytesVector(encodeBytesVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeBytesVector(append(encodeBytesVector(in), 9))
	require.Error(t, err)
	_, err = decodeBytesVector([]byte{1, 5, 1})
	require.Error(t, err)
}
