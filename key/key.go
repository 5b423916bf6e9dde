package key

import (
	"bytes"
	"fmt"
	"net/netip"
)

// Size is the width of a packed key in bytes. Every run file is a raw
// concatenation of Size-byte records.
const Size = 16

// Key is the canonical 16-byte packed form of one IPv6 address.
//
// Keys have no identity beyond their bytes: two keys with equal bytes are the
// same address.
type Key [Size]byte

// Compare returns -1, 0 or 1 comparing a and b byte-lexicographically.
// The signature matches slices.SortFunc.
func Compare(a, b Key) int {
	return bytes.Compare(a[:], b[:])
}

// String returns the address form of the key, for logs and error messages.
func (k Key) String() string {
	return netip.AddrFrom16(k).String()
}

// EncodeAddr converts an IPv6 address in any valid textual form (full,
// abbreviated, mixed case) into its packed key.
func EncodeAddr(s string) (Key, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Key{}, err
	}
	if !addr.Is6() {
		return Key{}, fmt.Errorf("not an IPv6 address: %q", s)
	}
	return Key(addr.As16()), nil
}

// EncodeError reports an input line that could not be converted to a key.
// Line is 1-based.
type EncodeError struct {
	Line  int
	Input string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode line %d (%q): %v", e.Line, e.Input, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
