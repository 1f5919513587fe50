package seeds

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Well-known TMDB ids used for the demo library. Real ids keep the live
// genre lookups working against the actual API.
var demoShowIDs = []int64{
	1396,  // Breaking Bad
	1399,  // Game of Thrones
	66732, // Stranger Things
	60625, // Rick and Morty
	1418,  // The Big Bang Theory
	87108, // Chernobyl
	76479, // The Boys
	85271, // WandaVision
	63174, // Lucifer
	71912, // The Witcher
}

var demoMovieIDs = []int64{
	278,    // The Shawshank Redemption
	238,    // The Godfather
	157336, // Interstellar
	27205,  // Inception
	603,    // The Matrix
	680,    // Pulp Fiction
	155,    // The Dark Knight
	496243, // Parasite
	122,    // LotR: The Return of the King
	550,    // Fight Club
}

var statuses = []string{"watching", "completed", "planned", "dropped"}
var statusWeights = []float64{0.3, 0.4, 0.2, 0.1}

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE user_shows, user_movies, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting users")
	if err := seedUsers(ctx, pool, rng, 20); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Println("[seed] inserting show libraries")
	if err := seedLibrary(ctx, pool, rng, "user_shows", demoShowIDs, 80); err != nil {
		return fmt.Errorf("seed shows: %w", err)
	}

	log.Println("[seed] inserting movie libraries")
	if err := seedLibrary(ctx, pool, rng, "user_movies", demoMovieIDs, 80); err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	countries := []string{"US", "GB", "CA", "AU", "DE", "FR", "JP", "BR"}
	languages := []string{"en-US", "en-GB", "de-DE", "fr-FR", "ja-JP", "pt-BR"}

	rows := []string{}
	args := []any{}

	for i := range n {
		username := fmt.Sprintf("demo_user_%02d", i+1)
		country := countries[rng.Intn(len(countries))]
		language := languages[rng.Intn(len(languages))]
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(365))

		base := i * 4
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))

		args = append(args, username, country, language, createdAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO users (username, country, language, created_at) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedLibrary(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, table string, externalIDs []int64, n int) error {
	seen := make(map[[2]int64]bool)

	rows := []string{}
	args := []any{}

	for range n {
		// Skew toward low user ids so some users have rich histories.
		userID := int64(math.Ceil(math.Pow(rng.Float64(), 1.5) * 20))
		userID = max(1, min(userID, 20))

		externalID := externalIDs[rng.Intn(len(externalIDs))]

		key := [2]int64{userID, externalID}
		if seen[key] {
			continue
		}
		seen[key] = true

		status := weightedChoice(rng, statuses, statusWeights)

		// Roughly a third of rows never recorded an interaction time.
		var lastInteraction any
		if rng.Float64() < 0.66 {
			lastInteraction = time.Now().AddDate(0, 0, -rng.Intn(180))
		}

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, userID, externalID, status, lastInteraction)
	}

	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (user_id, external_id, status, last_interaction_at) VALUES %s",
		table, strings.Join(rows, ", "),
	)

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
