// Package storage defines persistence for scraped watchlist rows,
// supplemental text records, and train-run audit entries.
package storage

import (
	"context"

	"github.com/hyperjump/susume/internal/models"
)

// Storage persists the ingestion-side data that feeds the recommender.
type Storage interface {
	// Watchlist rows produced by the scraping collaborator.
	SaveWatchlist(ctx context.Context, entries []*models.WatchlistEntry) error
	ListWatchlist(ctx context.Context) ([]*models.WatchlistEntry, error)

	// Supplemental records produced by the enrichment client.
	SaveSupplemental(ctx context.Context, records []models.SupplementalRecord) error
	ListSupplemental(ctx context.Context) ([]models.SupplementalRecord, error)
	CountSupplemental(ctx context.Context) (int64, error)

	// Train-run audit records.
	RecordTrainRun(ctx context.Context, run *models.TrainRun) error
	LastTrainRun(ctx context.Context) (*models.TrainRun, error)

	Close() error
}
