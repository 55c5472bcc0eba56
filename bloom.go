package kfilter

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrConfiguration is returned when a filter or hash family is constructed
// with an invalid number of buckets, number of hashes, or strategy.
var ErrConfiguration = errors.New("kfilter: invalid configuration")

// Option configures a filter at construction.
type Option func(*options)

type options struct {
	strategy Strategy
}

// WithStrategy selects the hash family strategy. The default is SeededMurmur3.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

func buildFamily(numBuckets uint64, k uint32, opts []Option) (*HashFamily, error) {
	o := options{strategy: SeededMurmur3}
	for _, opt := range opts {
		opt(&o)
	}
	if numBuckets == 0 {
		return nil, fmt.Errorf("%w: number of buckets must be positive", ErrConfiguration)
	}
	return NewHashFamily(k, o.strategy)
}

// Filter is a non-thread-safe bloom filter over a flat array of m bits
// probed by k hash functions.
type Filter struct {
	bits   *BitArray
	family *HashFamily
	m      uint64
	count  uint64 // Number of Insert calls
}

// New creates a bloom filter sized for the expected number of items and
// desired false positive rate. It panics if opts select an unknown Strategy.
func New(expectedItems uint64, fpRate float64, opts ...Option) *Filter {
	// OptimalParams always returns m > 0 and k in [1, MaxHashes].
	m, k, _ := OptimalParams(expectedItems, fpRate)
	f, err := NewWithParams(m, k, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// NewWithParams creates a bloom filter with numBuckets bits and numHashes
// hash functions. It fails with ErrConfiguration if numBuckets is 0 or
// numHashes is not in [1, MaxHashes]; no value is silently clamped.
func NewWithParams(numBuckets uint64, numHashes uint32, opts ...Option) (*Filter, error) {
	family, err := buildFamily(numBuckets, numHashes, opts)
	if err != nil {
		return nil, err
	}
	return newFilter(numBuckets, family), nil
}

func newFilter(numBuckets uint64, family *HashFamily) *Filter {
	return &Filter{
		bits:   NewBitArray(numBuckets),
		family: family,
		m:      numBuckets,
	}
}

// Insert adds data to the filter and increments the insertion count by one.
func (f *Filter) Insert(data []byte) {
	for i := range f.family.funcs {
		f.bits.SetBit(f.family.Index(i, data, f.m))
	}
	f.count++
}

// InsertString adds s to the filter.
func (f *Filter) InsertString(s string) {
	f.Insert([]byte(s))
}

// Search checks whether data might be in the filter.
// If any of its bits is unset it returns (false, 0): data is definitely absent.
// Otherwise it returns true with the current false positive probability.
func (f *Filter) Search(data []byte) (bool, float64) {
	for i := range f.family.funcs {
		if !f.bits.GetBit(f.family.Index(i, data, f.m)) {
			return false, 0
		}
	}
	return true, f.FalsePositiveProbability()
}

// SearchString checks whether s might be in the filter.
func (f *Filter) SearchString(s string) (bool, float64) {
	return f.Search([]byte(s))
}

// FalsePositiveProbability estimates the false positive rate from the
// current number of buckets, hashes and insertions.
func (f *Filter) FalsePositiveProbability() float64 {
	return EstimateFalsePositiveRate(f.m, f.family.K(), f.count)
}

// NumBuckets returns m, the size of the bit array.
func (f *Filter) NumBuckets() uint64 {
	return f.m
}

// K returns the number of hash functions used.
func (f *Filter) K() uint32 {
	return f.family.K()
}

// Count returns the number of Insert calls made so far.
func (f *Filter) Count() uint64 {
	return f.count
}

// Strategy returns the hash family strategy in use.
func (f *Filter) Strategy() Strategy {
	return f.family.Strategy()
}

// HashNames returns the names of the filter's hash functions in table order.
func (f *Filter) HashNames() []string {
	return f.family.Names()
}

// EstimatedFillRatio returns the proportion of bits that are set.
func (f *Filter) EstimatedFillRatio() float64 {
	return float64(f.bits.Count()) / float64(f.m)
}

// AtomicFilter is a thread-safe bloom filter using atomic operations.
// Bits are set with atomic OR and the insertion count is an atomic counter.
//
// A Search racing with an Insert of the same data may report absence until
// that Insert has set all of its bits; it never reports presence early.
type AtomicFilter struct {
	bits   *atomicBitArray
	family *HashFamily
	m      uint64
	count  atomic.Uint64
}

// NewAtomic creates a thread-safe bloom filter sized for the expected
// number of items and desired false positive rate. It panics if opts select
// an unknown Strategy.
func NewAtomic(expectedItems uint64, fpRate float64, opts ...Option) *AtomicFilter {
	m, k, _ := OptimalParams(expectedItems, fpRate)
	f, err := NewAtomicWithParams(m, k, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// NewAtomicWithParams creates a thread-safe bloom filter with explicit
// parameters, validated as in NewWithParams.
func NewAtomicWithParams(numBuckets uint64, numHashes uint32, opts ...Option) (*AtomicFilter, error) {
	family, err := buildFamily(numBuckets, numHashes, opts)
	if err != nil {
		return nil, err
	}
	return &AtomicFilter{
		bits:   newAtomicBitArray(numBuckets),
		family: family,
		m:      numBuckets,
	}, nil
}

// Insert adds data to the filter atomically.
func (f *AtomicFilter) Insert(data []byte) {
	for i := range f.family.funcs {
		f.bits.setBit(f.family.Index(i, data, f.m))
	}
	// Counted only once every bit is visible.
	f.count.Add(1)
}

// InsertString adds s to the filter atomically.
func (f *AtomicFilter) InsertString(s string) {
	f.Insert([]byte(s))
}

// Search checks whether data might be in the filter.
// This operation is safe to call concurrently with Insert.
func (f *AtomicFilter) Search(data []byte) (bool, float64) {
	for i := range f.family.funcs {
		if !f.bits.getBit(f.family.Index(i, data, f.m)) {
			return false, 0
		}
	}
	return true, f.FalsePositiveProbability()
}

// SearchString checks whether s might be in the filter.
func (f *AtomicFilter) SearchString(s string) (bool, float64) {
	return f.Search([]byte(s))
}

// FalsePositiveProbability estimates the current false positive rate.
func (f *AtomicFilter) FalsePositiveProbability() float64 {
	return EstimateFalsePositiveRate(f.m, f.family.K(), f.count.Load())
}

// NumBuckets returns m, the size of the bit array.
func (f *AtomicFilter) NumBuckets() uint64 {
	return f.m
}

// K returns the number of hash functions used.
func (f *AtomicFilter) K() uint32 {
	return f.family.K()
}

// Count returns the number of completed Insert calls.
func (f *AtomicFilter) Count() uint64 {
	return f.count.Load()
}

// Strategy returns the hash family strategy in use.
func (f *AtomicFilter) Strategy() Strategy {
	return f.family.Strategy()
}

// EstimatedFillRatio returns the proportion of bits that are set.
func (f *AtomicFilter) EstimatedFillRatio() float64 {
	return float64(f.bits.count()) / float64(f.m)
}
