package relstore

import "golang.org/x/exp/constraints"

// IntHistogram is an equi-width histogram over an INT column's observed
// values, used to estimate a scalar predicate's selectivity without
// scanning the table.
type IntHistogram struct {
	buckets    []int32
	nBins      int32
	min, max   int32
	width      float64
	ntuples    int32
}

// NewIntHistogram builds an empty histogram with nBins equal-width buckets
// covering [vMin, vMax] inclusive.
func NewIntHistogram(nBins int32, vMin, vMax int32) (*IntHistogram, error) {
	if nBins <= 0 {
		return nil, NewError(IncompatibleTypesError, "a histogram needs at least one bucket")
	}
	if vMax < vMin {
		return nil, NewError(IncompatibleTypesError, "histogram max must not be less than min")
	}
	span := float64(vMax-vMin) + 1
	width := span / float64(nBins)
	if width < 1 {
		width = 1
	}
	return &IntHistogram{
		buckets: make([]int32, nBins),
		nBins:   nBins,
		min:     vMin,
		max:     vMax,
		width:   width,
	}, nil
}

func (h *IntHistogram) bucketOf(v int32) int {
	idx := int(float64(v-h.min) / h.width)
	return clampBucket(idx, len(h.buckets))
}

// clampBucket bounds idx to a valid slice index in [0, n), sharing the same
// saturating clamp the string histogram's bucket lookup needs.
func clampBucket[T constraints.Integer](idx T, n int) int {
	i := int(idx)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// AddValue records one observation.
func (h *IntHistogram) AddValue(v int32) {
	h.buckets[h.bucketOf(v)]++
	h.ntuples++
}

// EstimateSelectivity reports the estimated fraction of recorded values for
// which "value op v" holds.
func (h *IntHistogram) EstimateSelectivity(op BoolOp, v int32) float64 {
	if h.ntuples == 0 {
		return 0
	}
	switch op {
	case OpEq:
		return h.estimateEq(v)
	case OpNe:
		return 1 - h.estimateEq(v)
	case OpGt:
		return h.estimateGt(v)
	case OpGe:
		return h.estimateGt(v) + h.bucketFraction(v)
	case OpLt:
		return 1 - h.estimateGt(v) - h.bucketFraction(v)
	case OpLe:
		return 1 - h.estimateGt(v)
	}
	return 0
}

// bucketFraction returns the fraction of the total attributed to the single
// bucket containing v, treating the bucket's count as spread uniformly
// across its width.
func (h *IntHistogram) bucketFraction(v int32) float64 {
	if v < h.min || v > h.max {
		return 0
	}
	b := h.bucketOf(v)
	return (float64(h.buckets[b]) / h.width) / float64(h.ntuples)
}

func (h *IntHistogram) estimateEq(v int32) float64 {
	if v < h.min || v > h.max {
		return 0
	}
	return h.bucketFraction(v)
}

// estimateGt estimates the fraction of values strictly greater than v: the
// full weight of every bucket entirely above v, plus the fraction of v's own
// bucket lying above it (assuming uniform distribution within the bucket).
func (h *IntHistogram) estimateGt(v int32) float64 {
	if v >= h.max {
		return 0
	}
	if v < h.min {
		return 1
	}
	b := h.bucketOf(v)
	bucketLow := h.min + int32(float64(b)*h.width)
	bucketHigh := bucketLow + int32(h.width)
	if bucketHigh <= v {
		bucketHigh = v + 1
	}
	fracAbove := float64(bucketHigh-v-1) / h.width
	if fracAbove < 0 {
		fracAbove = 0
	}
	sum := float64(h.buckets[b]) * fracAbove
	for i := b + 1; i < len(h.buckets); i++ {
		sum += float64(h.buckets[i])
	}
	return sum / float64(h.ntuples)
}
