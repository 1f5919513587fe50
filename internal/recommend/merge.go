package recommend

import "sort"

// Merge combines the long-term and recent profiles over the union of their
// keys. A genre missing from one profile contributes 0 from that side.
func Merge(longTerm, recent GenreProfile, w Weights) GenreProfile {
	merged := make(GenreProfile, len(longTerm)+len(recent))
	for g, v := range longTerm {
		merged[g] = w.LongTerm * v
	}
	for g, v := range recent {
		merged[g] += w.Recent * v
	}
	return merged
}

// TopGenres returns up to n genre ids ordered by descending weight. Ties
// break on ascending genre id so the ordering is deterministic.
func TopGenres(profile GenreProfile, n int) []int {
	ids := make([]int, 0, len(profile))
	for g := range profile {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool {
		if profile[ids[i]] != profile[ids[j]] {
			return profile[ids[i]] > profile[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
