package domain

import (
	"fmt"
	"time"
)

type MediaType string

const (
	MediaTypeTV    MediaType = "tv"
	MediaTypeMovie MediaType = "movie"
)

// ParseMediaType validates a media type coming from request input.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaTypeTV, MediaTypeMovie:
		return MediaType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
}

type WatchStatus string

const (
	StatusWatching  WatchStatus = "watching"
	StatusCompleted WatchStatus = "completed"
	StatusPlanned   WatchStatus = "planned"
	StatusDropped   WatchStatus = "dropped"
)

// ParseWatchStatus validates a status coming from request input.
func ParseWatchStatus(s string) (WatchStatus, error) {
	switch WatchStatus(s) {
	case StatusWatching, StatusCompleted, StatusPlanned, StatusDropped:
		return WatchStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWatchStatus, s)
}

// LibraryRow is one tracked item in a user's library for a single media type.
// LastInteractionAt is nil when the user never updated progress on the item.
type LibraryRow struct {
	ExternalID        int64       `json:"external_id"`
	Status            WatchStatus `json:"status"`
	LastInteractionAt *time.Time  `json:"last_interaction_at,omitempty"`
}
