package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/vivaply/recommendation-service/internal/domain"
)

const requestTimeout = 15 * time.Second

// Client is the TMDB API client used for genre lookups and discovery.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient creates a TMDB client. requestsPerSecond bounds outbound request
// rate; the circuit breaker opens after repeated consecutive failures so a
// TMDB outage degrades fast instead of stacking up timeouts.
func NewClient(apiKey, baseURL string, requestsPerSecond float64, logger zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: requestTimeout,
		},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1),
		logger:  logger.With().Str("component", "tmdb").Logger(),
	}
}

// ---- TMDB response types (internal, not exposed to consumers) ----

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type detailResponse struct {
	ID     int64   `json:"id"`
	Genres []genre `json:"genres"`
}

type discoverItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"` // movies
	Name       string `json:"name"`  // tv shows
	PosterPath string `json:"poster_path"`
	GenreIDs   []int  `json:"genre_ids"`
}

type discoverResponse struct {
	Page    int            `json:"page"`
	Results []discoverItem `json:"results"`
}

// ---- Client methods ----

// ItemGenres fetches the genre ids of a single show or movie.
func (c *Client) ItemGenres(ctx context.Context, mediaType domain.MediaType, externalID int64) ([]int, error) {
	u := fmt.Sprintf("%s/%s/%d?api_key=%s", c.baseURL, mediaType, externalID, c.apiKey)

	var detail detailResponse
	if err := c.get(ctx, u, &detail); err != nil {
		return nil, fmt.Errorf("fetch %s %d: %w", mediaType, externalID, err)
	}

	ids := make([]int, 0, len(detail.Genres))
	for _, g := range detail.Genres {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// DiscoverByGenres fetches the first discover page for the given genres,
// sorted by popularity.
func (c *Client) DiscoverByGenres(ctx context.Context, mediaType domain.MediaType, genreIDs []int, language string) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("with_genres", joinGenreIDs(genreIDs))
	q.Set("sort_by", "popularity.desc")
	if language != "" {
		q.Set("language", language)
	}
	u := fmt.Sprintf("%s/discover/%s?%s", c.baseURL, mediaType, q.Encode())

	var page discoverResponse
	if err := c.get(ctx, u, &page); err != nil {
		return nil, fmt.Errorf("discover %s: %w", mediaType, err)
	}

	candidates := make([]domain.Candidate, 0, len(page.Results))
	for _, item := range page.Results {
		title := item.Title
		if title == "" {
			title = item.Name
		}
		candidates = append(candidates, domain.Candidate{
			ExternalID: item.ID,
			Title:      title,
			PosterPath: item.PosterPath,
			GenreIDs:   item.GenreIDs,
		})
	}
	return candidates, nil
}

func (c *Client) get(ctx context.Context, u string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tmdb status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func joinGenreIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
