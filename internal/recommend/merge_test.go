package recommend

import (
	"math"
	"testing"
)

func TestMergeWeighting(t *testing.T) {
	longTerm := GenreProfile{10: 1.0, 20: 0.5}
	recent := GenreProfile{10: 0.5, 30: 1.0}

	merged := Merge(longTerm, recent, DefaultWeights())

	// 0.7*1.0 + 0.3*0.5 = 0.85
	if merged[10] != 0.85 {
		t.Errorf("expected genre 10 = 0.85, got %f", merged[10])
	}
	// present only in long-term
	if math.Abs(merged[20]-0.35) > 1e-9 {
		t.Errorf("expected genre 20 = 0.35, got %f", merged[20])
	}
	// present only in recent
	if math.Abs(merged[30]-0.3) > 1e-9 {
		t.Errorf("expected genre 30 = 0.3, got %f", merged[30])
	}
	if len(merged) != 3 {
		t.Errorf("expected union of keys, got %v", merged)
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	merged := Merge(GenreProfile{}, GenreProfile{}, DefaultWeights())
	if len(merged) != 0 {
		t.Errorf("expected empty merge, got %v", merged)
	}

	merged = Merge(GenreProfile{10: 1.0}, GenreProfile{}, DefaultWeights())
	if math.Abs(merged[10]-0.7) > 1e-9 {
		t.Errorf("expected genre 10 = 0.7, got %f", merged[10])
	}
}

func TestTopGenresOrdering(t *testing.T) {
	profile := GenreProfile{10: 0.2, 20: 0.9, 30: 0.5, 40: 0.7}

	top := TopGenres(profile, 3)

	want := []int{20, 40, 30}
	if len(top) != len(want) {
		t.Fatalf("expected %d genres, got %v", len(want), top)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], top[i])
		}
	}
}

func TestTopGenresTieBreak(t *testing.T) {
	profile := GenreProfile{30: 0.5, 10: 0.5, 20: 0.5}

	top := TopGenres(profile, 3)

	// equal weights break on ascending genre id
	want := []int{10, 20, 30}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], top[i])
		}
	}
}

func TestTopGenresEmptyProfile(t *testing.T) {
	top := TopGenres(GenreProfile{}, 3)
	if len(top) != 0 {
		t.Errorf("expected no genres, got %v", top)
	}
}
