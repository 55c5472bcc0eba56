package kfilter

import "math"

const (
	// MaxHashes is the largest number of hash functions a filter may use.
	MaxHashes = 10
	// ln2 is the natural logarithm of 2.
	ln2 = 0.6931471805599453
	// ln2Squared is ln(2)^2.
	ln2Squared = 0.4804530139182014
)

// OptimalParams calculates bloom filter parameters for the expected number
// of items and target false positive rate. Returns the number of buckets
// (m), number of hash functions (k, clamped to [1, MaxHashes]), and bits per item.
func OptimalParams(expectedItems uint64, fpRate float64) (numBuckets uint64, k uint32, bitsPerItem float64) {
	if expectedItems == 0 {
		expectedItems = 1
	}
	if fpRate <= 0 {
		fpRate = 0.0001 // default to 0.01%
	}
	if fpRate >= 1 {
		fpRate = 0.99
	}

	// Optimal bits per item: -ln(fpRate) / ln(2)^2
	bitsPerItem = -math.Log(fpRate) / ln2Squared

	// Always >= 1 since bitsPerItem > 0
	numBuckets = uint64(math.Ceil(float64(expectedItems) * bitsPerItem))

	// Optimal k: (m/n) * ln(2)
	kFloat := float64(numBuckets) / float64(expectedItems) * ln2
	k = uint32(math.Round(kFloat))

	k = max(k, 1)
	k = min(k, MaxHashes)

	return numBuckets, k, bitsPerItem
}

// EstimateFalsePositiveRate returns the probability that a never-inserted
// item has all k of its bits set after n insertions into m buckets:
//
//	(1 - (1 - 1/m)^(k*n))^k
//
// (1-1/m)^(kn) is evaluated as exp(kn * log1p(-1/m)) so large m keeps its precision.
func EstimateFalsePositiveRate(numBuckets uint64, k uint32, itemsAdded uint64) float64 {
	if numBuckets == 0 || k == 0 || itemsAdded == 0 {
		return 0
	}

	m := float64(numBuckets)
	kf := float64(k)
	kn := kf * float64(itemsAdded)

	pZero := math.Exp(kn * math.Log1p(-1/m))
	return math.Pow(1-pZero, kf)
}
