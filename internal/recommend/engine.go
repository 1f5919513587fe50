package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/vivaply/recommendation-service/internal/domain"
)

// LibraryStore provides the user's library state for one media type.
type LibraryStore interface {
	GetLibraryRows(ctx context.Context, userID int64, mediaType domain.MediaType) ([]domain.LibraryRow, error)
	GetTrackedExternalIDs(ctx context.Context, userID int64, mediaType domain.MediaType) (map[int64]struct{}, error)
}

// GenreSource resolves genre ids for a batch of external items. Items whose
// lookup failed are absent from the returned map.
type GenreSource interface {
	GenresForItems(ctx context.Context, mediaType domain.MediaType, ids []int64) map[int64][]int
}

// Discoverer fetches one page of candidates matching the given genres.
type Discoverer interface {
	DiscoverByGenres(ctx context.Context, mediaType domain.MediaType, genreIDs []int, language string) ([]domain.Candidate, error)
}

// Engine produces ranked recommendations from library state plus live genre
// metadata. Every call recomputes from scratch; nothing is persisted here.
type Engine struct {
	library  LibraryStore
	genres   GenreSource
	discover Discoverer
	weights  Weights
	logger   zerolog.Logger
}

func NewEngine(library LibraryStore, genres GenreSource, discover Discoverer, weights Weights, logger zerolog.Logger) *Engine {
	return &Engine{
		library:  library,
		genres:   genres,
		discover: discover,
		weights:  weights,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// Recommend builds the TV and movie lists for one user. The two types are
// independent; a discovery failure on one side never affects the other.
func (e *Engine) Recommend(ctx context.Context, userID int64, language string) (*domain.RecommendationLists, error) {
	tv, err := e.recommendType(ctx, userID, domain.MediaTypeTV, language)
	if err != nil {
		return nil, fmt.Errorf("recommend tv: %w", err)
	}
	movies, err := e.recommendType(ctx, userID, domain.MediaTypeMovie, language)
	if err != nil {
		return nil, fmt.Errorf("recommend movies: %w", err)
	}
	return &domain.RecommendationLists{TV: tv, Movies: movies}, nil
}

func (e *Engine) recommendType(ctx context.Context, userID int64, mediaType domain.MediaType, language string) ([]domain.ScoredCandidate, error) {
	rows, err := e.library.GetLibraryRows(ctx, userID, mediaType)
	if err != nil {
		return nil, fmt.Errorf("fetch library rows: %w", err)
	}

	merged := e.buildMergedProfile(ctx, mediaType, rows)

	top := TopGenres(merged, e.weights.TopGenres)
	if len(top) == 0 {
		return []domain.ScoredCandidate{}, nil
	}

	candidates, err := e.discover.DiscoverByGenres(ctx, mediaType, top, language)
	if err != nil {
		// Degrade to no recommendations for this type only.
		e.logger.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("media_type", string(mediaType)).
			Msg("discovery failed, returning empty list")
		return []domain.ScoredCandidate{}, nil
	}

	tracked, err := e.library.GetTrackedExternalIDs(ctx, userID, mediaType)
	if err != nil {
		return nil, fmt.Errorf("fetch tracked ids: %w", err)
	}

	return rankCandidates(candidates, merged, tracked, e.weights.MaxResults), nil
}

// buildMergedProfile fetches genre metadata for every row either profile can
// use, builds both profiles, and merges them. Lookup failures just shrink the
// metadata map.
func (e *Engine) buildMergedProfile(ctx context.Context, mediaType domain.MediaType, rows []domain.LibraryRow) GenreProfile {
	long := longTermRows(rows)
	recent := recentRows(rows, e.weights.RecentWindow)

	seen := make(map[int64]struct{}, len(long)+len(recent))
	ids := make([]int64, 0, len(long)+len(recent))
	for _, rs := range [][]domain.LibraryRow{long, recent} {
		for _, r := range rs {
			if _, ok := seen[r.ExternalID]; ok {
				continue
			}
			seen[r.ExternalID] = struct{}{}
			ids = append(ids, r.ExternalID)
		}
	}

	var genres map[int64][]int
	if len(ids) > 0 {
		genres = e.genres.GenresForItems(ctx, mediaType, ids)
	}

	longTerm := BuildLongTermProfile(rows, genres, e.weights)
	recentProfile := BuildRecentProfile(rows, genres, e.weights)
	return Merge(longTerm, recentProfile, e.weights)
}

// rankCandidates filters out already-tracked items, scores the rest against
// the merged profile, and returns the top results by descending score.
func rankCandidates(candidates []domain.Candidate, profile GenreProfile, tracked map[int64]struct{}, limit int) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := tracked[c.ExternalID]; ok {
			continue
		}
		score := 0.0
		for _, g := range c.GenreIDs {
			score += profile[g]
		}
		scored = append(scored, domain.ScoredCandidate{
			Candidate: c,
			Score:     math.Round(score*1000) / 1000, // 3 decimal places
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
