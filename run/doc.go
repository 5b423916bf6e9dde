// Package run implements the on-disk run format of the external sort: a run
// is a sorted, immutable file holding a raw concatenation of fixed-width
// 16-byte keys, with no header, no record count and no delimiters. Record
// boundaries are implicit from the key width, so an uncompressed run's length
// must be an exact multiple of 16.
//
// Writers stage output in a temporary file and publish it by rename, so a run
// is never visible half-written. Readers stream sequentially with a large
// buffer; optional zstd compression is transparent to both sides.
package run
