package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vivaply/recommendation-service/internal/cache"
	"github.com/vivaply/recommendation-service/internal/domain"
	"github.com/vivaply/recommendation-service/internal/recommend"
	"github.com/vivaply/recommendation-service/internal/repository"
)

const (
	defaultLanguage  = "en-US"
	batchConcurrency = 10
)

type Service struct {
	repo   *repository.Repository
	cache  *cache.Cache
	engine *recommend.Engine
	logger zerolog.Logger
}

func NewService(repo *repository.Repository, cache *cache.Cache, engine *recommend.Engine, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		engine: engine,
		logger: logger.With().Str("component", "service").Logger(),
	}
}

func (s *Service) GetRecommendations(ctx context.Context, userID int64, language string) (*domain.RecommendationResult, error) {
	if language == "" {
		language = defaultLanguage
	}

	// The user must exist before anything else happens.
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	// Check cache
	cached, found, err := s.cache.Get(ctx, userID, language)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache get failed")
	}

	if found {
		return &domain.RecommendationResult{
			Lists:    *cached,
			CacheHit: true,
		}, nil
	}

	// Cache miss -> recompute from library state and live genre data
	lists, err := s.engine.Recommend(ctx, userID, language)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, userID, language, lists); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Int64("user_id", userID).Msg("cache set failed")
	}

	return &domain.RecommendationResult{
		Lists:    *lists,
		CacheHit: false,
	}, nil
}

func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	// Fetch paginated user IDs
	userIDs, err := s.repo.GetUserIDsPaginated(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch user ids: %w", err)
	}

	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	// Process users concurrently with bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency) // semaphore

	for i, userID := range userIDs {
		wg.Add(1)
		go func(idx int, uid int64) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = s.processUserForBatch(ctx, uid)
		}(i, userID)
	}
	wg.Wait()

	// summary
	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	elapsed := time.Since(start).Milliseconds()

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: elapsed,
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single user, capturing errors.
func (s *Service) processUserForBatch(ctx context.Context, userID int64) domain.BatchUserResult {
	result, err := s.GetRecommendations(ctx, userID, defaultLanguage)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("batch user failed")
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID:          userID,
		Recommendations: &result.Lists,
		Status:          domain.StatusSuccess,
	}
}

// AddLibraryItem records a library row for a user and clears the user's
// cached recommendations so the next request reflects the change.
func (s *Service) AddLibraryItem(ctx context.Context, userID int64, mediaType domain.MediaType, externalID int64, status domain.WatchStatus) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("fetch user: %w", err)
	}

	if err := s.repo.UpsertLibraryItem(ctx, userID, mediaType, externalID, status); err != nil {
		return err
	}
	if err := s.cache.ClearUserCache(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache invalidation failed")
	}
	return nil
}

// Handle response error
func categorizeError(err error) (string, string) {
	if errors.Is(err, domain.ErrUserNotFound) {
		return "user_not_found", "user not found"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "request_timeout", "request timed out"
	}
	return "internal_error", "an unexpected error occurred"
}
