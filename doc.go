// Package kfilter provides a classic bloom filter: a flat array of m bits
// probed by k independent hash functions.
//
// A bloom filter is a space-efficient probabilistic data structure that tests
// whether an element is a member of a set. False positive matches are possible,
// but false negatives are not – if the filter says an element is not present,
// it definitely is not. If it says an element might be present, it could be a
// false positive, and [Filter.Search] reports how likely that is.
//
// # Hash Families
//
// Each filter owns a [HashFamily] of k functions, 1 <= k <= [MaxHashes].
// Three strategies are available through [WithStrategy]:
//
// [SeededMurmur3] (the default) evaluates 32-bit murmur3 once per function
// with seeds 0, 1, ..., k-1.
//
// [SeededXXH3] evaluates 64-bit xxh3 with k fixed seeds.
//
// [NamedDigests] evaluates k distinct algorithms taken in priority order
// from a fixed table: murmur3-64, xxh3-64, xxhash-64, fnv1a-64, fnv1-64,
// crc64-ecma, crc32-castagnoli, sha256, sha1 and md5.
//
// Every strategy uses fixed seeds and a fixed table order, so the same
// inserts produce the same bits in every process. None of them is meant to
// resist adversarial input.
//
// # Implementations
//
// [Filter] is the fastest option for single-threaded workloads. It has no
// synchronization overhead.
//
// [AtomicFilter] provides thread-safety using lock-free atomic operations.
// Multiple goroutines can safely call Insert and Search concurrently. It uses
// [sync/atomic.Uint64.Or] (Go 1.23+) for bit-setting and counts an insertion
// only after all of its bits are set.
//
// # Choosing Parameters
//
// Use [NewWithParams] to pick the number of buckets m and hash functions k
// directly:
//
//	f, err := kfilter.NewWithParams(10, 2)
//
// Invalid parameters fail with [ErrConfiguration] and are never clamped.
// Use [New] with an expected number of items and a target false positive
// rate to have m and k calculated by [OptimalParams].
//
// # False Positive Rate
//
// After n insertions the probability that a never-inserted element is
// reported present is estimated as
//
//	p = (1 - (1 - 1/m)^(k*n))^k
//
// Search recomputes p from the current insertion count every time it
// reports presence. See [EstimateFalsePositiveRate].
//
// # Thread Safety
//
// [Filter] is NOT thread-safe. Use external synchronization or choose
// [AtomicFilter] for concurrent access.
package kfilter
