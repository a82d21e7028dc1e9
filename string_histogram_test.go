package relstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringHistogramEqualitySelectivity(t *testing.T) {
	h, err := NewStringHistogram(10)
	require.NoError(t, err)
	words := []string{"apple", "banana", "apple", "cherry", "apple"}
	for _, w := range words {
		h.AddValue(w)
	}

	require.InDelta(t, 0.6, h.EstimateSelectivity(OpEq, "apple"), 0.01)
	require.InDelta(t, 0.2, h.EstimateSelectivity(OpEq, "banana"), 0.01)
	require.Equal(t, 0.0, h.EstimateSelectivity(OpEq, "durian"))
}

func TestStringHistogramNotEqualIsComplement(t *testing.T) {
	h, err := NewStringHistogram(10)
	require.NoError(t, err)
	h.AddValue("apple")
	h.AddValue("apple")
	h.AddValue("banana")

	eq := h.EstimateSelectivity(OpEq, "apple")
	ne := h.EstimateSelectivity(OpNe, "apple")
	require.InDelta(t, 1.0, eq+ne, 1e-9)
}

func TestStringHistogramOrderedPredicatesRoughlyOrdered(t *testing.T) {
	h, err := NewStringHistogram(16)
	require.NoError(t, err)
	for _, w := range []string{"aardvark", "banana", "cherry", "date", "eggplant"} {
		h.AddValue(w)
	}

	// A prefix-key ordering means the selectivity of "> a word near the
	// front" should exceed that of "> a word near the back".
	front := h.EstimateSelectivity(OpGt, "aardvark")
	back := h.EstimateSelectivity(OpGt, "eggplant")
	require.GreaterOrEqual(t, front, back)
}

func TestStringHistogramEmptyReturnsZero(t *testing.T) {
	h, err := NewStringHistogram(10)
	require.NoError(t, err)
	require.Equal(t, 0.0, h.EstimateSelectivity(OpEq, "anything"))
}

func TestStringPrefixKeyNeverNegative(t *testing.T) {
	require.GreaterOrEqual(t, stringPrefixKey("\xff\xff\xff\xff"), int32(0))
	require.Equal(t, stringPrefixMax, stringPrefixKey("\xff\xff\xff"))
}
