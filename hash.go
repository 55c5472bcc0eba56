package kfilter

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"hash/crc64"
	"hash/fnv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Strategy selects how a HashFamily derives its k functions.
type Strategy uint8

const (
	// SeededMurmur3 evaluates 32-bit murmur3 with seeds 0..k-1.
	SeededMurmur3 Strategy = iota
	// SeededXXH3 evaluates 64-bit xxh3 with k fixed seeds.
	SeededXXH3
	// NamedDigests evaluates the first k algorithms of the digest table.
	NamedDigests
)

var strategyNames = [...]string{
	SeededMurmur3: "murmur3",
	SeededXXH3:    "xxh3",
	NamedDigests:  "digests",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy returns the Strategy named by s ("murmur3", "xxh3" or "digests").
func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if strings.EqualFold(s, name) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hash strategy %q", ErrConfiguration, s)
}

// Strategies returns every supported strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{SeededMurmur3, SeededXXH3, NamedDigests}
}

// xxh3Seeds are the fixed seeds for SeededXXH3. They are part of the
// filter's bit layout and must not change.
var xxh3Seeds = [MaxHashes]uint64{
	0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9, 0x94d049bb133111eb, 0x2545f4914f6cdd1d,
	0x61c8864680b583eb, 0xd6e8feb86659fd93, 0xa0761d6478bd642f, 0xe7037ed1a0b428db,
	0x8ebc6af09c88c6e3, 0x589965cc75374cc3,
}

// digest is one named entry of the NamedDigests table.
type digest struct {
	name string
	sum  func(data []byte) uint64
}

var (
	crc64Table  = crc64.MakeTable(crc64.ECMA)
	crc32CTable = crc32.MakeTable(crc32.Castagnoli)
)

// digestTable is in priority order: a family of k functions uses entries
// [0, k). The order is part of the filter's bit layout.
var digestTable = [MaxHashes]digest{
	{"murmur3-64", murmur3.Sum64},
	{"xxh3-64", xxh3.Hash},
	{"xxhash-64", xxhash.Sum64},
	{"fnv1a-64", func(data []byte) uint64 {
		h := fnv.New64a()
		h.Write(data)
		return h.Sum64()
	}},
	{"fnv1-64", func(data []byte) uint64 {
		h := fnv.New64()
		h.Write(data)
		return h.Sum64()
	}},
	{"crc64-ecma", func(data []byte) uint64 {
		return crc64.Checksum(data, crc64Table)
	}},
	{"crc32-castagnoli", func(data []byte) uint64 {
		return uint64(crc32.Checksum(data, crc32CTable))
	}},
	{"sha256", func(data []byte) uint64 {
		sum := sha256.Sum256(data)
		return binary.BigEndian.Uint64(sum[:8])
	}},
	{"sha1", func(data []byte) uint64 {
		sum := sha1.Sum(data)
		return binary.BigEndian.Uint64(sum[:8])
	}},
	{"md5", func(data []byte) uint64 {
		sum := md5.Sum(data)
		return binary.BigEndian.Uint64(sum[:8])
	}},
}

// HashFamily is an ordered table of k deterministic hash functions.
// Function i always maps the same bytes to the same value, in every process.
type HashFamily struct {
	strategy Strategy
	names    []string
	funcs    []func(data []byte) uint64
}

// NewHashFamily builds a family of exactly k functions using strategy s.
// It fails with ErrConfiguration if k is 0 or greater than MaxHashes.
func NewHashFamily(k uint32, s Strategy) (*HashFamily, error) {
	if k == 0 {
		return nil, fmt.Errorf("%w: number of hashes must be positive", ErrConfiguration)
	}
	if k > MaxHashes {
		return nil, fmt.Errorf("%w: number of hashes %d exceeds maximum %d", ErrConfiguration, k, MaxHashes)
	}

	h := &HashFamily{
		strategy: s,
		names:    make([]string, k),
		funcs:    make([]func([]byte) uint64, k),
	}

	for i := range k {
		switch s {
		case SeededMurmur3:
			seed := i
			h.names[i] = fmt.Sprintf("murmur3/seed=%d", seed)
			h.funcs[i] = func(data []byte) uint64 {
				return uint64(murmur3.Sum32WithSeed(data, seed))
			}
		case SeededXXH3:
			seed := xxh3Seeds[i]
			h.names[i] = fmt.Sprintf("xxh3/seed=%#x", seed)
			h.funcs[i] = func(data []byte) uint64 {
				return xxh3.HashSeed(data, seed)
			}
		case NamedDigests:
			h.names[i] = digestTable[i].name
			h.funcs[i] = digestTable[i].sum
		default:
			return nil, fmt.Errorf("%w: unknown hash strategy %d", ErrConfiguration, uint8(s))
		}
	}

	return h, nil
}

// K returns the number of functions in the family.
func (h *HashFamily) K() uint32 {
	return uint32(len(h.funcs))
}

// Strategy returns the strategy the family was built with.
func (h *HashFamily) Strategy() Strategy {
	return h.strategy
}

// Names returns the name of each function in table order.
func (h *HashFamily) Names() []string {
	return append([]string(nil), h.names...)
}

// Sum evaluates function i on data. It never fails; i must be in [0, K()).
func (h *HashFamily) Sum(i int, data []byte) uint64 {
	return h.funcs[i](data)
}

// Index evaluates function i on data reduced modulo m.
func (h *HashFamily) Index(i int, data []byte, m uint64) uint64 {
	return h.funcs[i](data) % m
}

// Indices appends the k indices of data in [0, m) to dst and returns it.
func (h *HashFamily) Indices(data []byte, m uint64, dst []uint64) []uint64 {
	for _, fn := range h.funcs {
		dst = append(dst, fn(data)%m)
	}
	return dst
}
