package recommend

import (
	"sort"

	"github.com/vivaply/recommendation-service/internal/domain"
)

// Weights are the scoring constants. The defaults reproduce the tuning the
// product shipped with; there is no evidence for other values.
type Weights struct {
	LongTerm  float64
	Recent    float64
	Completed float64
	Watching  float64

	RecencyBoost float64
	RecentWindow int

	TopGenres  int
	MaxResults int
}

func DefaultWeights() Weights {
	return Weights{
		LongTerm:     0.7,
		Recent:       0.3,
		Completed:    2,
		Watching:     1,
		RecencyBoost: 2,
		RecentWindow: 5,
		TopGenres:    3,
		MaxResults:   20,
	}
}

// GenreProfile maps genre id to a weight. After normalization every weight is
// in [0,1] and the maximum weight of a non-empty profile is exactly 1.
type GenreProfile map[int]float64

// longTermRows selects the rows that feed the long-term profile.
func longTermRows(rows []domain.LibraryRow) []domain.LibraryRow {
	var out []domain.LibraryRow
	for _, r := range rows {
		if r.Status == domain.StatusWatching || r.Status == domain.StatusCompleted {
			out = append(out, r)
		}
	}
	return out
}

// recentRows selects the most recently interacted-with rows, newest first.
func recentRows(rows []domain.LibraryRow, window int) []domain.LibraryRow {
	var out []domain.LibraryRow
	for _, r := range rows {
		if r.LastInteractionAt != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastInteractionAt.After(*out[j].LastInteractionAt)
	})
	if len(out) > window {
		out = out[:window]
	}
	return out
}

// BuildLongTermProfile accumulates genre scores over all watching/completed
// rows: completed items count double. Rows whose genre lookup failed are
// absent from genres and contribute nothing.
func BuildLongTermProfile(rows []domain.LibraryRow, genres map[int64][]int, w Weights) GenreProfile {
	raw := make(GenreProfile)
	for _, r := range longTermRows(rows) {
		weight := w.Watching
		if r.Status == domain.StatusCompleted {
			weight = w.Completed
		}
		for _, g := range genres[r.ExternalID] {
			raw[g] += weight
		}
	}
	return normalize(raw)
}

// BuildRecentProfile accumulates a flat recency boost over the genres of the
// last RecentWindow interacted-with rows.
func BuildRecentProfile(rows []domain.LibraryRow, genres map[int64][]int, w Weights) GenreProfile {
	raw := make(GenreProfile)
	for _, r := range recentRows(rows, w.RecentWindow) {
		for _, g := range genres[r.ExternalID] {
			raw[g] += w.RecencyBoost
		}
	}
	return normalize(raw)
}

// normalize divides every score by the maximum raw score. The divisor is 1
// when the map is empty or all-zero, so an all-zero profile stays all-zero.
func normalize(raw GenreProfile) GenreProfile {
	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}
	out := make(GenreProfile, len(raw))
	for g, v := range raw {
		out[g] = v / max
	}
	return out
}
