package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Uint256Len is the BCS size of a Move u256.
const Uint256Len = 32

// SerializeUint256 encodes v as a BCS u256 (32 bytes, little endian).
func SerializeUint256(v *uint256.Int) []byte {
	be := v.Bytes32()
	out := make([]byte, Uint256Len)
	for i := range be {
		out[i] = be[Uint256Len-1-i]
	}
	return out
}

// SerializeUint64AsUint256 is a shortcut for prices that fit into a u64.
func SerializeUint64AsUint256(v uint64) []byte {
	return SerializeUint256(uint256.NewInt(v))
}

// DeserializeUint256 decodes a BCS u256.
func DeserializeUint256(b []byte) (*uint256.Int, error) {
	if len(b) != Uint256Len {
		return nil, fmt.Errorf("got wrong number of bytes for u256: %d", len(b))
	}
	be := make([]byte, Uint256Len)
	for i := range b {
		be[i] = b[Uint256Len-1-i]
	}
	return new(uint256.Int).SetBytes32(be), nil
}
