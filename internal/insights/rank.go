package insights

import "sort"

// rankTips orders tips by score, highest first, keeping emission order on ties,
// and truncates to limit. Scores are cleared on the returned copies.
func rankTips(tips []Tip, limit int) []Tip {
	ranked := append([]Tip(nil), tips...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].score = 0
	}
	return ranked
}
