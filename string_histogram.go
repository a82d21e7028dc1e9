package relstore

import boom "github.com/tylertreat/BoomFilters"

// StringHistogram estimates selectivity over a STRING column. Equality and
// inequality predicates are served by a count-min sketch tracking exact
// per-value frequency up to its error bound; ordered predicates (<, <=, >,
// >=) are served by an IntHistogram over each string's leading bytes packed
// into an integer, giving the same equi-width bucket semantics as an INT
// column at string-prefix granularity.
type StringHistogram struct {
	cms     *boom.CountMinSketch
	prefix  *IntHistogram
	ntuples int32
}

// NewStringHistogram builds an empty histogram with nBins buckets for its
// prefix-ordering estimate.
func NewStringHistogram(nBins int32) (*StringHistogram, error) {
	prefix, err := NewIntHistogram(nBins, 0, stringPrefixMax)
	if err != nil {
		return nil, err
	}
	return &StringHistogram{
		cms:    boom.NewCountMinSketch(0.001, 0.999),
		prefix: prefix,
	}, nil
}

// stringPrefixMax is the largest value stringPrefixKey can return: three
// packed 0xff bytes.
const stringPrefixMax int32 = 1<<24 - 1

// stringPrefixKey packs a string's first 3 bytes, big-endian, into a
// non-negative int32 ordering key -- enough to approximate lexicographic
// order for selectivity estimation, not to recover the string.
func stringPrefixKey(s string) int32 {
	var key int32
	for i := 0; i < 3; i++ {
		key <<= 8
		if i < len(s) {
			key |= int32(s[i])
		}
	}
	return key
}

// AddValue records one observation.
func (h *StringHistogram) AddValue(s string) {
	h.cms.Add([]byte(s))
	h.prefix.AddValue(stringPrefixKey(s))
	h.ntuples++
}

// EstimateSelectivity reports the estimated fraction of recorded values for
// which "value op s" holds.
func (h *StringHistogram) EstimateSelectivity(op BoolOp, s string) float64 {
	if h.ntuples == 0 {
		return 0
	}
	switch op {
	case OpEq:
		return float64(h.cms.Count([]byte(s))) / float64(h.ntuples)
	case OpNe:
		return 1 - float64(h.cms.Count([]byte(s)))/float64(h.ntuples)
	default:
		return h.prefix.EstimateSelectivity(op, stringPrefixKey(s))
	}
}
