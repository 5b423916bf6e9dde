// Package testutil provides deterministic random key and address generators
// for tests and benchmarks.
package testutil
