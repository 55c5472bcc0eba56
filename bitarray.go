package kfilter

import (
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/bits-and-blooms/bitset"
)

// cacheLineSize is the size of a CPU cache line in bytes.
const cacheLineSize = 64

// BitArray is a fixed-length array of m single-bit slots, all initially 0.
// Bits only ever transition from 0 to 1.
type BitArray struct {
	m    uint64
	bits *bitset.BitSet
}

// NewBitArray allocates a zeroed BitArray of m bits.
func NewBitArray(m uint64) *BitArray {
	return &BitArray{
		m:    m,
		bits: bitset.New(uint(m)),
	}
}

// SetBit sets slot i to 1. It is idempotent.
// An index outside [0, m) is a programming error and panics.
func (b *BitArray) SetBit(i uint64) {
	b.check(i)
	b.bits.Set(uint(i))
}

// GetBit reports whether slot i is 1.
func (b *BitArray) GetBit(i uint64) bool {
	b.check(i)
	return b.bits.Test(uint(i))
}

// Len returns m.
func (b *BitArray) Len() uint64 {
	return b.m
}

// Count returns the number of set bits.
func (b *BitArray) Count() uint64 {
	return uint64(b.bits.Count())
}

// Equal reports whether both arrays have the same length and the same bits set.
func (b *BitArray) Equal(other *BitArray) bool {
	return b.m == other.m && b.bits.Equal(other.bits)
}

// bitset grows on an out-of-range Set, which would silently break the
// fixed-length contract.
func (b *BitArray) check(i uint64) {
	if i >= b.m {
		panic(fmt.Sprintf("kfilter: bit index %d out of range [0, %d)", i, b.m))
	}
}

// atomicBitArray is the lock-free counterpart of BitArray used by
// AtomicFilter. Words are cache-line aligned.
type atomicBitArray struct {
	raw   []byte          // Raw allocation to keep aligned memory alive for GC
	words []atomic.Uint64 // ceil(m/64) words
	m     uint64
}

func newAtomicBitArray(m uint64) *atomicBitArray {
	raw, words := makeAlignedAtomicUint64Slice(int((m + 63) / 64))
	return &atomicBitArray{raw: raw, words: words, m: m}
}

// makeAlignedAtomicUint64Slice allocates a cache-line aligned slice of atomic.Uint64.
// Returns the raw byte slice (to keep alive for GC) and the aligned atomic slice.
func makeAlignedAtomicUint64Slice(n int) ([]byte, []atomic.Uint64) {
	// atomic.Uint64 is the same size as uint64 (8 bytes)
	const atomicSize = 8
	raw := make([]byte, n*atomicSize+cacheLineSize-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := (cacheLineSize - int(addr%cacheLineSize)) % cacheLineSize
	aligned := unsafe.Slice((*atomic.Uint64)(unsafe.Pointer(&raw[offset])), n)
	return raw, aligned
}

func (b *atomicBitArray) setBit(i uint64) {
	if i >= b.m {
		panic(fmt.Sprintf("kfilter: bit index %d out of range [0, %d)", i, b.m))
	}
	b.words[i/64].Or(1 << (i % 64))
}

func (b *atomicBitArray) getBit(i uint64) bool {
	if i >= b.m {
		panic(fmt.Sprintf("kfilter: bit index %d out of range [0, %d)", i, b.m))
	}
	return b.words[i/64].Load()&(1<<(i%64)) != 0
}

func (b *atomicBitArray) count() uint64 {
	var n uint64
	for i := range b.words {
		n += uint64(bits.OnesCount64(b.words[i].Load()))
	}
	return n
}
