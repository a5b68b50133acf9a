package classify

import (
	"fmt"
	"testing"

	"smc-dashboard/internal/types"
)

func idea(symbol, typ, direction string) types.TradeIdea {
	return types.TradeIdea{
		Symbol:    symbol,
		Type:      typ,
		TradeType: direction,
		LotSize:   50,
	}
}

func TestClassifyRouting(t *testing.T) {
	ideas := []types.TradeIdea{
		idea("A", types.TypeCE, types.DirectionLong),
		idea("B", types.TypeCE, types.DirectionShort),
		idea("C", types.TypePE, types.DirectionLong),
		idea("D", types.TypePE, types.DirectionShort),
	}

	b := Classify(ideas)

	if len(b.LongCE) != 1 || b.LongCE[0].Symbol != "A" {
		t.Errorf("Expected A in LONG_CE, got %v", b.LongCE)
	}
	if len(b.ShortCE) != 1 || b.ShortCE[0].Symbol != "B" {
		t.Errorf("Expected B in SHORT_CE, got %v", b.ShortCE)
	}
	if len(b.LongPE) != 1 || b.LongPE[0].Symbol != "C" {
		t.Errorf("Expected C in LONG_PE, got %v", b.LongPE)
	}
	if len(b.ShortPE) != 1 || b.ShortPE[0].Symbol != "D" {
		t.Errorf("Expected D in SHORT_PE, got %v", b.ShortPE)
	}
	if len(b.Unclassified) != 0 {
		t.Errorf("Expected no unclassified ideas, got %d", len(b.Unclassified))
	}
}

func TestClassifyDisjointAndComplete(t *testing.T) {
	// Every idea lands in exactly one bucket; the union equals the input.
	var ideas []types.TradeIdea
	for i := 0; i < 8; i++ {
		typ := types.TypeCE
		if i%2 == 1 {
			typ = types.TypePE
		}
		dir := types.DirectionLong
		if i%4 >= 2 {
			dir = types.DirectionShort
		}
		ideas = append(ideas, idea(fmt.Sprintf("SYM%d", i), typ, dir))
	}

	b := Classify(ideas)

	seen := map[string]int{}
	for _, bucket := range [][]types.TradeIdea{b.LongCE, b.ShortCE, b.LongPE, b.ShortPE} {
		for _, it := range bucket {
			seen[it.Symbol]++
		}
	}

	if len(seen) != len(ideas) {
		t.Fatalf("Expected %d distinct symbols across buckets, got %d", len(ideas), len(seen))
	}
	for sym, n := range seen {
		if n != 1 {
			t.Errorf("Symbol %s appeared in %d buckets, want exactly 1", sym, n)
		}
	}
}

func TestClassifyCapPreservesOrder(t *testing.T) {
	var ideas []types.TradeIdea
	for i := 0; i < 20; i++ {
		ideas = append(ideas, idea(fmt.Sprintf("CE%02d", i), types.TypeCE, types.DirectionLong))
	}

	b := Classify(ideas)

	if len(b.LongCE) != MaxPerBucket {
		t.Fatalf("Expected bucket capped at %d, got %d", MaxPerBucket, len(b.LongCE))
	}
	for i, it := range b.LongCE {
		want := fmt.Sprintf("CE%02d", i)
		if it.Symbol != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, it.Symbol)
		}
	}
}

func TestClassifyBelowCapKeepsAll(t *testing.T) {
	var ideas []types.TradeIdea
	for i := 0; i < 5; i++ {
		ideas = append(ideas, idea(fmt.Sprintf("PE%d", i), types.TypePE, types.DirectionShort))
	}

	b := Classify(ideas)

	if len(b.ShortPE) != 5 {
		t.Errorf("Expected all 5 ideas kept below cap, got %d", len(b.ShortPE))
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	b := Classify(nil)

	for _, key := range Keys {
		if len(b.Get(key)) != 0 {
			t.Errorf("Expected bucket %s empty for empty input", key)
		}
	}
}

func TestClassifyUnknownPair(t *testing.T) {
	ideas := []types.TradeIdea{
		idea("GOOD", types.TypeCE, types.DirectionLong),
		idea("ODD", "FUT", types.DirectionLong),
		idea("ODDER", types.TypeCE, "FLAT"),
	}

	b := Classify(ideas)

	if len(b.LongCE) != 1 {
		t.Errorf("Expected 1 classified idea, got %d", len(b.LongCE))
	}
	if len(b.Unclassified) != 2 {
		t.Errorf("Expected 2 unclassified ideas, got %d", len(b.Unclassified))
	}
}
