package repository

import "github.com/jackc/pgx/v5/pgxpool"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// libraryTable maps a media type to its library table. The mapping is fixed;
// media types are validated before they reach this layer.
func libraryTable(t string) string {
	if t == "tv" {
		return "user_shows"
	}
	return "user_movies"
}
