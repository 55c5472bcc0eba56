package benchmarks

import (
	"fmt"
	"testing"

	bab "github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"
	"github.com/jcalabro/kfilter"
)

const (
	benchItems  = 1_000_000
	benchFPRate = 0.01
)

// Pre-generate test data to avoid measuring string generation
var testKeys [][]byte

func init() {
	testKeys = make([][]byte, benchItems)
	for i := range benchItems {
		testKeys[i] = fmt.Appendf(nil, "key-%d", i)
	}
}

// ============================================================================
// Sequential Insert Benchmarks
// ============================================================================

func BenchmarkInsertSequential_Kfilter(b *testing.B) {
	for _, s := range kfilter.Strategies() {
		b.Run(s.String(), func(b *testing.B) {
			f := kfilter.New(benchItems, benchFPRate, kfilter.WithStrategy(s))
			b.ResetTimer()
			for i := range b.N {
				f.Insert(testKeys[i%benchItems])
			}
		})
	}
}

func BenchmarkInsertSequential_KfilterAtomic(b *testing.B) {
	f := kfilter.NewAtomic(benchItems, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Insert(testKeys[i%benchItems])
	}
}

func BenchmarkInsertSequential_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

func BenchmarkInsertSequential_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

func BenchmarkInsertSequential_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	b.ResetTimer()
	for i := range b.N {
		// blobloom requires pre-hashing
		f.Add(xxhash.Sum64(testKeys[i%benchItems]))
	}
}

// ============================================================================
// Sequential Search Benchmarks
// ============================================================================

func BenchmarkSearchSequential_Kfilter(b *testing.B) {
	for _, s := range kfilter.Strategies() {
		b.Run(s.String(), func(b *testing.B) {
			f := kfilter.New(benchItems, benchFPRate, kfilter.WithStrategy(s))
			for i := range benchItems {
				f.Insert(testKeys[i])
			}
			b.ResetTimer()
			for i := range b.N {
				f.Search(testKeys[i%benchItems])
			}
		})
	}
}

func BenchmarkSearchSequential_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	for i := range benchItems {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeys[i%benchItems])
	}
}

func BenchmarkSearchSequential_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	// Pre-hash keys for fair comparison
	hashes := make([]uint64, benchItems)
	for i := range benchItems {
		hashes[i] = xxhash.Sum64(testKeys[i])
		f.Add(hashes[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Has(hashes[i%benchItems])
	}
}

// ============================================================================
// Parallel Benchmarks
// ============================================================================

func BenchmarkInsertParallel_KfilterAtomic(b *testing.B) {
	f := kfilter.NewAtomic(benchItems, benchFPRate)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Insert(testKeys[i%benchItems])
			i++
		}
	})
}

func BenchmarkInsertParallel_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Add(testKeys[i%benchItems])
			i++
		}
	})
}

func BenchmarkMixed_KfilterAtomic(b *testing.B) {
	f := kfilter.NewAtomic(benchItems, benchFPRate)
	// Pre-populate half
	for i := 0; i < benchItems/2; i++ {
		f.Insert(testKeys[i])
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				f.Insert(testKeys[(benchItems/2+i)%benchItems])
			} else {
				f.Search(testKeys[i%benchItems])
			}
			i++
		}
	})
}

// ============================================================================
// False Positive Rate Comparison
// ============================================================================

func TestFalsePositiveRateComparison(t *testing.T) {
	const items = 100_000
	const probes = 100_000

	measure := func(test func([]byte) bool) float64 {
		var fp int
		for i := range probes {
			if test(fmt.Appendf(nil, "absent-%d", i)) {
				fp++
			}
		}
		return float64(fp) / probes
	}

	for _, s := range kfilter.Strategies() {
		f := kfilter.New(items, benchFPRate, kfilter.WithStrategy(s))
		for i := range items {
			f.Insert(testKeys[i])
		}
		rate := measure(func(key []byte) bool {
			ok, _ := f.Search(key)
			return ok
		})
		t.Logf("kfilter/%s: %.4f (estimate %.4f)", s, rate, f.FalsePositiveProbability())
		if rate > benchFPRate*2 {
			t.Errorf("kfilter/%s: FP rate %.4f above %.4f", s, rate, benchFPRate*2)
		}
	}

	bf := bab.NewWithEstimates(items, benchFPRate)
	for i := range items {
		bf.Add(testKeys[i])
	}
	t.Logf("bits-and-blooms: %.4f", measure(bf.Test))
}
