package domain

// Candidate is an item returned by the external discovery endpoint, reduced
// to the minimal shape the scoring core needs plus display fields.
type Candidate struct {
	ExternalID int64  `json:"external_id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
	GenreIDs   []int  `json:"genre_ids"`
}

type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// RecommendationLists holds the per-type recommendation lists for one user.
// The two lists are computed independently.
type RecommendationLists struct {
	TV     []ScoredCandidate `json:"tv"`
	Movies []ScoredCandidate `json:"movies"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TVCount     int    `json:"tv_count"`
	MovieCount  int    `json:"movie_count"`
}

type RecommendationResult struct {
	Lists    RecommendationLists
	CacheHit bool
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchUserResult struct {
	UserID          int64                `json:"user_id"`
	Recommendations *RecommendationLists `json:"recommendations,omitempty"`
	Status          BatchStatus          `json:"status"`
	Error           string               `json:"error,omitempty"`
	Message         string               `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}
