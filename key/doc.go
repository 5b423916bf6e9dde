// Package key defines the fixed-width binary key the sort/merge pipeline
// operates on, and the encoder that canonicalizes IPv6 address text into it.
//
// A Key is the 16-byte packed form of an IPv6 address. The packed form is
// canonical: case, leading zeros and '::' abbreviation in the textual input
// never affect it, so byte equality of keys is equality of addresses and
// byte-lexicographic order is a total order over the address space.
package key
