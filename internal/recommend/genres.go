package recommend

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vivaply/recommendation-service/internal/domain"
)

// ItemGenreFetcher resolves the genre ids of one external item.
type ItemGenreFetcher interface {
	ItemGenres(ctx context.Context, mediaType domain.MediaType, externalID int64) ([]int, error)
}

// BatchGenreSource fans out per-item genre lookups with bounded concurrency.
// Items whose lookup fails are left out of the result map; a failed lookup
// never fails the batch.
type BatchGenreSource struct {
	fetcher ItemGenreFetcher
	limit   int
	logger  zerolog.Logger
}

func NewBatchGenreSource(fetcher ItemGenreFetcher, limit int, logger zerolog.Logger) *BatchGenreSource {
	if limit < 1 {
		limit = 1
	}
	return &BatchGenreSource{
		fetcher: fetcher,
		limit:   limit,
		logger:  logger.With().Str("component", "genre_source").Logger(),
	}
}

func (s *BatchGenreSource) GenresForItems(ctx context.Context, mediaType domain.MediaType, ids []int64) map[int64][]int {
	out := make(map[int64][]int, len(ids))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(s.limit)

	for _, id := range ids {
		g.Go(func() error {
			genres, err := s.fetcher.ItemGenres(ctx, mediaType, id)
			if err != nil {
				s.logger.Debug().
					Err(err).
					Str("media_type", string(mediaType)).
					Int64("external_id", id).
					Msg("genre lookup failed, skipping item")
				return nil
			}
			mu.Lock()
			out[id] = genres
			mu.Unlock()
			return nil
		})
	}

	// Goroutines only return nil; Wait is for completion, not errors.
	_ = g.Wait()
	return out
}
