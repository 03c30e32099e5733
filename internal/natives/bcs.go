package natives

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/initia-labs/movevm/types"
)

// Native arguments and results are BCS encoded, one value per slice.

func argError(i int, what string, err error) error {
	return types.ErrMarshalling.Wrapf("argument %d (%s): %v", i, what, err)
}

func decodeU8(b []byte) (uint8, error) {
	if len(b) != 1 {
		return 0, fmt.Errorf("expected 1 byte, got %d", len(b))
	}
	return b[0], nil
}

func decodeBool(b []byte) (bool, error) {
	v, err := decodeU8(b)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool %d", v)
	}
}

func decodeU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("expected 8 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

func decodeAddress(b []byte) (types.AccountAddress, error) {
	return types.NewAccountAddressFromBytes(b)
}

// uleb128 decodes a length prefix and returns it with the number of bytes read.
func uleb128(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(b) && i < 10; i++ {
		v |= uint64(b[i]&0x7f) << (7 * i)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("malformed uleb128 length")
}

func decodeBytes(b []byte) ([]byte, error) {
	n, read, err := uleb128(b)
	if err != nil {
		return nil, err
	}
	if uint64(len(b)-read) != n {
		return nil, fmt.Errorf("expected %d bytes, got %d", n, len(b)-read)
	}
	return b[read:], nil
}

func decodeString(b []byte) (string, error) {
	raw, err := decodeBytes(b)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("invalid utf-8")
	}
	return string(raw), nil
}

// decodeBytesVector decodes a vector<vector<u8>>.
func decodeBytesVector(b []byte) ([][]byte, error) {
	count, read, err := uleb128(b)
	if err != nil {
		return nil, err
	}
	b = b[read:]
	if count > uint64(len(b)) {
		return nil, fmt.Errorf("vector length %d exceeds %d remaining bytes", count, len(b))
	}
	out := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		n, read, err := uleb128(b)
		if err != nil {
			return nil, err
		}
		if uint64(len(b)-read) < n {
			return nil, fmt.Errorf("element %d truncated", i)
		}
		out = append(out, b[read:read+int(n)])
		b = b[read+int(n):]
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(b))
	}
	return out, nil
}

func encodeU8(v uint8) []byte {
	return []byte{v}
}

func encodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func encodeU64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func encodeAddress(a types.AccountAddress) []byte {
	return append([]byte(nil), a[:]...)
}

func appendUleb128(out []byte, v uint64) []byte {
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

func encodeBytes(v []byte) []byte {
	out := appendUleb128(make([]byte, 0, len(v)+2), uint64(len(v)))
	return append(out, v...)
}

func encodeBytesVector(vs [][]byte) []byte {
	out := appendUleb128(nil, uint64(len(vs)))
	for _, v := range vs {
		out = appendUleb128(out, uint64(len(v)))
		out = append(out, v...)
	}
	return out
}
