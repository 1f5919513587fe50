package repository

import (
	"context"
	"fmt"

	"github.com/vivaply/recommendation-service/internal/domain"
)

// GetLibraryRows returns every library row for a user and media type,
// including rows that never recorded an interaction time.
func (r *Repository) GetLibraryRows(ctx context.Context, userID int64, mediaType domain.MediaType) ([]domain.LibraryRow, error) {
	query := fmt.Sprintf(
		`SELECT external_id, status, last_interaction_at
		FROM %s
		WHERE user_id = $1`,
		libraryTable(string(mediaType)),
	)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query %s library for user %d: %w", mediaType, userID, err)
	}
	defer rows.Close()

	var items []domain.LibraryRow
	for rows.Next() {
		var item domain.LibraryRow
		if err := rows.Scan(&item.ExternalID, &item.Status, &item.LastInteractionAt); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library rows: %w", err)
	}
	return items, nil
}

// GetTrackedExternalIDs returns the set of external ids already in the user's
// library for a media type, used to exclude known items from recommendations.
func (r *Repository) GetTrackedExternalIDs(ctx context.Context, userID int64, mediaType domain.MediaType) (map[int64]struct{}, error) {
	query := fmt.Sprintf(
		`SELECT external_id FROM %s WHERE user_id = $1`,
		libraryTable(string(mediaType)),
	)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query tracked %s ids for user %d: %w", mediaType, userID, err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tracked id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked ids: %w", err)
	}
	return ids, nil
}

// UpsertLibraryItem inserts or updates a library row and refreshes its
// last-interaction time.
func (r *Repository) UpsertLibraryItem(ctx context.Context, userID int64, mediaType domain.MediaType, externalID int64, status domain.WatchStatus) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (user_id, external_id, status, last_interaction_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, external_id)
		DO UPDATE SET status = EXCLUDED.status, last_interaction_at = now()`,
		libraryTable(string(mediaType)),
	)

	if _, err := r.pool.Exec(ctx, query, userID, externalID, string(status)); err != nil {
		return fmt.Errorf("upsert %s library item for user %d: %w", mediaType, userID, err)
	}
	return nil
}
