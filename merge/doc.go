// Package merge implements the k-way merge primitive shared by the run
// reducer and the distinct counter: a min-heap over the front key of each
// sorted source, popped one record at a time. The merge is record-preserving;
// it emits exactly as many keys as its sources hold, in globally ascending
// order, with the source index as tie-break so equal keys drain in a
// deterministic order.
package merge
