package handler

import "github.com/vivaply/recommendation-service/internal/domain"

type RecommendationResponse struct {
	UserID   int64                     `json:"user_id"`
	TV       []domain.ScoredCandidate  `json:"tv"`
	Movies   []domain.ScoredCandidate  `json:"movies"`
	Metadata domain.RecommendationMeta `json:"metadata"`
}

type AddLibraryItemRequest struct {
	MediaType  string `json:"media_type"`
	ExternalID int64  `json:"external_id"`
	Status     string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
