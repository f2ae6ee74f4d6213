// Package catalog holds the pure browse pipeline: city options, filtering and
// price ordering, per-cuisine price aggregation and THB display conversion.
//
// Every function here allocates its output and never mutates its input, so it is
// safe to call concurrently on a shared snapshot.
package catalog
