package tips_test

import (
	"testing"

	"github.com/avdeeva/oporabot/internal/tips"
)

func TestAll(t *testing.T) {
	t.Parallel()

	all := tips.All()
	if len(all) != 8 {
		t.Fatalf("catalog has %d entries, want 8", len(all))
	}
	for i, tip := range all {
		if tip == "" {
			t.Errorf("catalog entry %d is empty", i)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	first := tips.All()
	first[0] = "mutated"

	second := tips.All()
	if second[0] == "mutated" {
		t.Fatal("All() exposes internal catalog storage")
	}
}

func TestRandomIsCatalogMember(t *testing.T) {
	t.Parallel()

	for range 100 {
		tip := tips.Random()
		if tip == "" {
			t.Fatal("Random() returned empty string")
		}
		if !tips.Contains(tip) {
			t.Fatalf("Random() returned %q, not a catalog member", tip)
		}
	}
}
