// Package uniqip counts the exact number of distinct IPv6 addresses in
// inputs far too large for an in-memory set, using an external merge sort
// over a scoped temporary workspace.
//
// The pipeline encodes each input line to a canonical 16-byte key, sorts
// bounded batches into on-disk runs, reduces the run set with fan-in-bounded
// merge passes, and finally folds a k-way merge of the surviving runs into a
// distinct count by comparing each emitted key to the previous one. Peak
// memory is governed by the batch size, peak open file descriptors by the
// fan-in.
//
//	c, err := uniqip.New(
//	    uniqip.WithBatchSize(1_000_000),
//	    uniqip.WithFanIn(128),
//	)
//	if err != nil { ... }
//	n, err := c.CountDistinctFile(ctx, "addresses.txt", "count.txt")
package uniqip
