package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vivaply/recommendation-service/internal/domain"
)

type fakeLibrary struct {
	rows    map[domain.MediaType][]domain.LibraryRow
	tracked map[domain.MediaType]map[int64]struct{}
	err     error
}

func (f *fakeLibrary) GetLibraryRows(_ context.Context, _ int64, t domain.MediaType) ([]domain.LibraryRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[t], nil
}

func (f *fakeLibrary) GetTrackedExternalIDs(_ context.Context, _ int64, t domain.MediaType) (map[int64]struct{}, error) {
	if f.tracked[t] == nil {
		return map[int64]struct{}{}, nil
	}
	return f.tracked[t], nil
}

type fakeGenres struct {
	genres map[int64][]int
}

func (f *fakeGenres) GenresForItems(_ context.Context, _ domain.MediaType, ids []int64) map[int64][]int {
	out := make(map[int64][]int)
	for _, id := range ids {
		if g, ok := f.genres[id]; ok {
			out[id] = g
		}
	}
	return out
}

type fakeDiscoverer struct {
	candidates map[domain.MediaType][]domain.Candidate
	err        error
	calls      []discoverCall
}

type discoverCall struct {
	mediaType domain.MediaType
	genreIDs  []int
	language  string
}

func (f *fakeDiscoverer) DiscoverByGenres(_ context.Context, t domain.MediaType, genreIDs []int, language string) ([]domain.Candidate, error) {
	f.calls = append(f.calls, discoverCall{mediaType: t, genreIDs: genreIDs, language: language})
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates[t], nil
}

func newTestEngine(lib *fakeLibrary, genres *fakeGenres, disc *fakeDiscoverer) *Engine {
	return NewEngine(lib, genres, disc, DefaultWeights(), zerolog.Nop())
}

func TestEmptyHistorySkipsDiscovery(t *testing.T) {
	disc := &fakeDiscoverer{}
	engine := newTestEngine(&fakeLibrary{}, &fakeGenres{}, disc)

	lists, err := engine.Recommend(context.Background(), 1, "en-US")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if len(lists.TV) != 0 || len(lists.Movies) != 0 {
		t.Errorf("expected empty lists, got %+v", lists)
	}
	if len(disc.calls) != 0 {
		t.Errorf("expected zero discovery calls, got %d", len(disc.calls))
	}
}

func TestTrackedItemsExcluded(t *testing.T) {
	lib := &fakeLibrary{
		rows: map[domain.MediaType][]domain.LibraryRow{
			domain.MediaTypeTV: {{ExternalID: 1, Status: domain.StatusCompleted}},
		},
		tracked: map[domain.MediaType]map[int64]struct{}{
			domain.MediaTypeTV: {1: {}, 100: {}},
		},
	}
	genres := &fakeGenres{genres: map[int64][]int{1: {10}}}
	disc := &fakeDiscoverer{
		candidates: map[domain.MediaType][]domain.Candidate{
			domain.MediaTypeTV: {
				{ExternalID: 100, GenreIDs: []int{10}}, // tracked, must disappear
				{ExternalID: 101, GenreIDs: []int{10}},
			},
		},
	}
	engine := newTestEngine(lib, genres, disc)

	lists, err := engine.Recommend(context.Background(), 1, "en-US")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if len(lists.TV) != 1 {
		t.Fatalf("expected 1 tv recommendation, got %d", len(lists.TV))
	}
	if lists.TV[0].ExternalID != 101 {
		t.Errorf("expected candidate 101, got %d", lists.TV[0].ExternalID)
	}
}

func TestCandidateScoring(t *testing.T) {
	// merged profile {1: 0.8, 2: 0.2, 3: 0.5} scores {1,2} as 1.0
	profile := GenreProfile{1: 0.8, 2: 0.2, 3: 0.5}
	candidates := []domain.Candidate{
		{ExternalID: 100, GenreIDs: []int{1, 2}},
		{ExternalID: 101, GenreIDs: []int{9}},
		{ExternalID: 102},
	}

	scored := rankCandidates(candidates, profile, nil, 20)

	if len(scored) != 3 {
		t.Fatalf("expected 3 scored candidates, got %d", len(scored))
	}
	if scored[0].ExternalID != 100 || scored[0].Score != 1.0 {
		t.Errorf("expected candidate 100 first with score 1.0, got %d score %f",
			scored[0].ExternalID, scored[0].Score)
	}
	for _, sc := range scored[1:] {
		if sc.Score != 0 {
			t.Errorf("expected no-overlap candidate %d to score 0, got %f", sc.ExternalID, sc.Score)
		}
	}
}

func TestRankingAndTruncation(t *testing.T) {
	profile := GenreProfile{1: 0.01}
	var candidates []domain.Candidate
	for i := 0; i < 25; i++ {
		// distinct scores: candidate i carries genre 1 repeated i+1 times
		genreIDs := make([]int, i+1)
		for j := range genreIDs {
			genreIDs[j] = 1
		}
		candidates = append(candidates, domain.Candidate{ExternalID: int64(i), GenreIDs: genreIDs})
	}

	scored := rankCandidates(candidates, profile, nil, 20)

	if len(scored) != 20 {
		t.Fatalf("expected 20 results, got %d", len(scored))
	}
	for i := 1; i < len(scored); i++ {
		if scored[i-1].Score < scored[i].Score {
			t.Errorf("results not sorted at %d: %f < %f", i, scored[i-1].Score, scored[i].Score)
		}
	}
	// highest-scoring candidate is id 24, lowest kept is id 5
	if scored[0].ExternalID != 24 {
		t.Errorf("expected candidate 24 first, got %d", scored[0].ExternalID)
	}
	if scored[19].ExternalID != 5 {
		t.Errorf("expected candidate 5 last, got %d", scored[19].ExternalID)
	}
}

func TestDiscoveryFailureDegradesToEmpty(t *testing.T) {
	lib := &fakeLibrary{
		rows: map[domain.MediaType][]domain.LibraryRow{
			domain.MediaTypeTV:    {{ExternalID: 1, Status: domain.StatusCompleted}},
			domain.MediaTypeMovie: {{ExternalID: 2, Status: domain.StatusCompleted}},
		},
	}
	genres := &fakeGenres{genres: map[int64][]int{1: {10}, 2: {20}}}
	disc := &fakeDiscoverer{err: errors.New("tmdb unavailable")}
	engine := newTestEngine(lib, genres, disc)

	lists, err := engine.Recommend(context.Background(), 1, "en-US")
	if err != nil {
		t.Fatalf("discovery failure must not fail the request: %v", err)
	}

	if len(lists.TV) != 0 || len(lists.Movies) != 0 {
		t.Errorf("expected empty lists on discovery failure, got %+v", lists)
	}
	// both types still attempted discovery independently
	if len(disc.calls) != 2 {
		t.Errorf("expected 2 discovery calls, got %d", len(disc.calls))
	}
}

func TestLibraryErrorPropagates(t *testing.T) {
	lib := &fakeLibrary{err: errors.New("db down")}
	engine := newTestEngine(lib, &fakeGenres{}, &fakeDiscoverer{})

	if _, err := engine.Recommend(context.Background(), 1, "en-US"); err == nil {
		t.Error("expected database error to propagate")
	}
}

func TestEndToEndDramaComedy(t *testing.T) {
	const (
		drama  = 18
		comedy = 35
	)

	lib := &fakeLibrary{
		rows: map[domain.MediaType][]domain.LibraryRow{
			domain.MediaTypeTV: {
				{ExternalID: 1, Status: domain.StatusCompleted},
				{ExternalID: 2, Status: domain.StatusWatching},
			},
		},
	}
	genres := &fakeGenres{genres: map[int64][]int{1: {drama}, 2: {comedy}}}
	disc := &fakeDiscoverer{
		candidates: map[domain.MediaType][]domain.Candidate{
			domain.MediaTypeTV: {
				{ExternalID: 100, GenreIDs: []int{drama}},
				{ExternalID: 101, GenreIDs: []int{comedy}},
				{ExternalID: 102, GenreIDs: []int{drama, comedy}},
			},
		},
	}
	engine := newTestEngine(lib, genres, disc)

	lists, err := engine.Recommend(context.Background(), 1, "en-US")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	// long-term raw {drama: 2, comedy: 1} -> normalized {1.0, 0.5};
	// recent empty; merged {drama: 0.7, comedy: 0.35}
	if len(disc.calls) == 0 {
		t.Fatal("expected a discovery call")
	}
	call := disc.calls[0]
	if len(call.genreIDs) != 2 || call.genreIDs[0] != drama || call.genreIDs[1] != comedy {
		t.Errorf("expected discovery with [drama, comedy], got %v", call.genreIDs)
	}

	if len(lists.TV) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(lists.TV))
	}
	// 102 scores 1.05, 100 scores 0.7, 101 scores 0.35
	wantOrder := []int64{102, 100, 101}
	wantScores := []float64{1.05, 0.7, 0.35}
	for i := range wantOrder {
		if lists.TV[i].ExternalID != wantOrder[i] {
			t.Errorf("position %d: expected %d, got %d", i, wantOrder[i], lists.TV[i].ExternalID)
		}
		if lists.TV[i].Score != wantScores[i] {
			t.Errorf("candidate %d: expected score %v, got %v",
				lists.TV[i].ExternalID, wantScores[i], lists.TV[i].Score)
		}
	}

	fmt.Printf("  merged drama/comedy ranking: %v\n", wantOrder)
}
