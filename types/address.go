package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AccountAddressLen is the length of a Move account address in bytes.
const AccountAddressLen = 32

// AccountAddress is a Move account address. It is also used as the identity of
// accounts, tables and transactions on the VM side.
type AccountAddress [AccountAddressLen]byte

// StdAddress is the address 0x1, which hosts the standard library and every
// native function exposed by this bridge.
var StdAddress = AccountAddress{AccountAddressLen - 1: 1}

// ZeroAddress is the all-zero address used as the blank identity in unit tests.
var ZeroAddress = AccountAddress{}

// String returns the canonical long form, 0x followed by 64 hex digits.
func (a AccountAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ShortString trims leading zeros, so StdAddress prints as 0x1.
func (a AccountAddress) ShortString() string {
	s := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

// Bytes returns the address as a byte slice.
func (a AccountAddress) Bytes() []byte {
	return a[:]
}

// MarshalJSON encodes the address in its short form.
func (a AccountAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ShortString())
}

// UnmarshalJSON accepts both short and long hex forms, with or without 0x.
func (a *AccountAddress) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	addr, err := NewAccountAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// NewAccountAddress parses a hex encoded address. Short forms are left padded
// with zeros, so "0x1" and "1" both decode to StdAddress.
func NewAccountAddress(s string) (AccountAddress, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) == 0 {
		return AccountAddress{}, errors.New("empty address string")
	}
	if len(s) > 2*AccountAddressLen {
		return AccountAddress{}, fmt.Errorf("address too long: %d hex digits", len(s))
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return AccountAddress{}, fmt.Errorf("invalid address: %w", err)
	}
	var addr AccountAddress
	copy(addr[AccountAddressLen-len(data):], data)
	return addr, nil
}

// NewAccountAddressFromBytes copies a 32 byte slice into an address.
func NewAccountAddressFromBytes(b []byte) (AccountAddress, error) {
	if len(b) != AccountAddressLen {
		return AccountAddress{}, fmt.Errorf("got wrong number of bytes for address: %d", len(b))
	}
	var addr AccountAddress
	copy(addr[:], b)
	return addr, nil
}
