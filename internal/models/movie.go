// Package models defines core data structures for catalog records, training items, and queries.
package models

import "time"

// CatalogRecord is one parsed row of the bulk catalog snapshot.
// Genres has already been filtered to the configured vocabulary.
type CatalogRecord struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Synopsis string   `json:"synopsis"`
	Genres   []string `json:"genres"`
}

// SupplementalRecord is an enrichment-derived record: the text is already
// flattened (title, overview, and genres joined) by the producer.
type SupplementalRecord struct {
	ID   int64  `json:"id" db:"movie_id"`
	Text string `json:"text" db:"text"`
}

// TrainingItem is the unit consumed by embedding: a stable external id and a
// non-empty flat text blob. Ids are unique within one merged corpus.
type TrainingItem struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// WatchlistEntry is one scraped watchlist row, persisted by the scraping
// collaborator and consumed by the enrichment client.
type WatchlistEntry struct {
	Name         string    `json:"name" db:"name"`
	LetterboxdID int64     `json:"letterboxd_id" db:"letterboxd_id"`
	URL          string    `json:"url" db:"url"`
	TMDBID       int64     `json:"tmdb_id" db:"tmdb_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TrainRun is an audit record for one fit of the recommender.
type TrainRun struct {
	ID           string    `json:"id" db:"id"`
	CatalogItems int       `json:"catalog_items" db:"catalog_items"`
	ExtraItems   int       `json:"extra_items" db:"extra_items"`
	CorpusItems  int       `json:"corpus_items" db:"corpus_items"`
	Dimensions   int       `json:"dimensions" db:"dimensions"`
	StartedAt    time.Time `json:"started_at" db:"started_at"`
	FinishedAt   time.Time `json:"finished_at" db:"finished_at"`
}
