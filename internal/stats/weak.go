package stats

import (
	"sort"

	"github.com/verte-zerg/testlens/internal/model"
)

// Weakest returns up to n groups with the lowest accuracy, ties broken by
// key. n <= 0 returns every group.
func Weakest(groups model.GroupedStats, n int) []model.GroupEntry {
	return rankGroups(groups, n, func(a, b float64) bool { return a < b })
}

// Strongest returns up to n groups with the highest accuracy, ties broken by
// key.
func Strongest(groups model.GroupedStats, n int) []model.GroupEntry {
	return rankGroups(groups, n, func(a, b float64) bool { return a > b })
}

// Below returns the groups whose accuracy is under threshold, weakest first.
func Below(groups model.GroupedStats, threshold float64) []model.GroupEntry {
	out := []model.GroupEntry{}
	for _, e := range Weakest(groups, 0) {
		if e.Stats.Accuracy < threshold {
			out = append(out, e)
		}
	}
	return out
}

func rankGroups(groups model.GroupedStats, n int, less func(a, b float64) bool) []model.GroupEntry {
	candidates := groups.Entries()
	sort.SliceStable(candidates, func(i, j int) bool {
		ai := candidates[i].Stats.Accuracy
		aj := candidates[j].Stats.Accuracy
		if ai == aj {
			return candidates[i].Key < candidates[j].Key
		}
		return less(ai, aj)
	})
	if n <= 0 || n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}
