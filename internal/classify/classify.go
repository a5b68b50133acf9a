// Package classify partitions scan picks into the four display buckets.
package classify

import "smc-dashboard/internal/types"

// MaxPerBucket caps how many ideas a bucket displays. The cap is a display
// limit, not a ranking: input order is preserved and the tail is dropped, so
// the upstream scan must pre-sort by relevance if relevance order matters.
const MaxPerBucket = 12

// BucketKey identifies one (direction, instrument type) bucket.
type BucketKey string

const (
	LongCE  BucketKey = "LONG_CE"
	ShortCE BucketKey = "SHORT_CE"
	LongPE  BucketKey = "LONG_PE"
	ShortPE BucketKey = "SHORT_PE"
)

// Keys lists the bucket keys in display order.
var Keys = []BucketKey{LongCE, ShortCE, LongPE, ShortPE}

// Buckets holds the classified ideas. Every idea lands in exactly one
// bucket; ideas with an unknown type/direction pair are kept aside in
// Unclassified for the diagnostics surface rather than silently dropped.
type Buckets struct {
	LongCE  []types.TradeIdea
	ShortCE []types.TradeIdea
	LongPE  []types.TradeIdea
	ShortPE []types.TradeIdea

	Unclassified []types.TradeIdea
}

// Get returns the bucket for a key.
func (b Buckets) Get(key BucketKey) []types.TradeIdea {
	switch key {
	case LongCE:
		return b.LongCE
	case ShortCE:
		return b.ShortCE
	case LongPE:
		return b.LongPE
	case ShortPE:
		return b.ShortPE
	}
	return nil
}

// Classify routes each idea into the bucket matching its (type, trade_type)
// pair, preserving input order, then truncates each bucket to MaxPerBucket.
// Empty buckets are a valid, expected outcome. Pure function.
func Classify(ideas []types.TradeIdea) Buckets {
	var b Buckets
	for _, idea := range ideas {
		key, ok := Key(idea)
		if !ok {
			b.Unclassified = append(b.Unclassified, idea)
			continue
		}
		switch key {
		case LongCE:
			b.LongCE = append(b.LongCE, idea)
		case ShortCE:
			b.ShortCE = append(b.ShortCE, idea)
		case LongPE:
			b.LongPE = append(b.LongPE, idea)
		case ShortPE:
			b.ShortPE = append(b.ShortPE, idea)
		}
	}
	b.LongCE = cap12(b.LongCE)
	b.ShortCE = cap12(b.ShortCE)
	b.LongPE = cap12(b.LongPE)
	b.ShortPE = cap12(b.ShortPE)
	return b
}

// Key returns the bucket key for an idea, or false when the idea's type or
// direction is outside the {CE,PE}×{LONG,SHORT} partition.
func Key(idea types.TradeIdea) (BucketKey, bool) {
	switch {
	case idea.TradeType == types.DirectionLong && idea.Type == types.TypeCE:
		return LongCE, true
	case idea.TradeType == types.DirectionShort && idea.Type == types.TypeCE:
		return ShortCE, true
	case idea.TradeType == types.DirectionLong && idea.Type == types.TypePE:
		return LongPE, true
	case idea.TradeType == types.DirectionShort && idea.Type == types.TypePE:
		return ShortPE, true
	}
	return "", false
}

func cap12(ideas []types.TradeIdea) []types.TradeIdea {
	if len(ideas) > MaxPerBucket {
		return ideas[:MaxPerBucket]
	}
	return ideas
}
