package models

import "fmt"

// RecommendQuery is a similarity query: free text plus the number of neighbours wanted.
type RecommendQuery struct {
	Text string `json:"text"`
	K    int    `json:"k,omitempty"`
}

// Validate ensures the query has text and normalizes K.
func (q *RecommendQuery) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("query text cannot be empty")
	}
	if q.K <= 0 {
		q.K = 5
	}
	if q.K > 100 {
		q.K = 100
	}
	return nil
}

// Recommendation is a single similarity hit.
type Recommendation struct {
	MovieID  int64   `json:"movie_id"`
	Distance float64 `json:"distance"`
	Rank     int     `json:"rank"`
}

// RecommendResponse is the response for a recommend request.
type RecommendResponse struct {
	Query       string            `json:"query"`
	Results     []*Recommendation `json:"results"`
	QueryTimeMS int64             `json:"query_time_ms"`
}

// LookupQuery resolves a free-text title to catalog entries.
type LookupQuery struct {
	Title string `json:"title"`
	Limit int    `json:"limit,omitempty"`
	Fuzzy bool   `json:"fuzzy,omitempty"`
}

// Validate ensures the lookup has a title and normalizes the limit.
func (q *LookupQuery) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("lookup title cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// LookupResult is a single title match.
type LookupResult struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}
