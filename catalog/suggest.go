package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestion returns a " (did you mean X?)" hint for an unknown item, or "".
func suggestion(items ItemRegistry, missing ItemID) string {
	if best, ok := ClosestItem(items, missing); ok {
		return " (did you mean " + best.String() + "?)"
	}
	return ""
}

// ClosestItem finds the registered item whose id is nearest to the given
// one by edit distance. Matches further than a third of the id length are
// ignored.
func ClosestItem(items ItemRegistry, target ItemID) (ItemID, bool) {
	if items == nil {
		return ItemID{}, false
	}
	want := strings.ToLower(target.String())
	limit := len(want) / 3
	if limit < 2 {
		limit = 2
	}

	var best ItemID
	bestDist := limit + 1
	for _, id := range items.Items() {
		dist := levenshtein.ComputeDistance(want, strings.ToLower(id.String()))
		if dist < bestDist || (dist == bestDist && id.String() < best.String()) {
			best = id
			bestDist = dist
		}
	}
	if bestDist > limit {
		return ItemID{}, false
	}
	return best, true
}
