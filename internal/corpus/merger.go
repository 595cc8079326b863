// Package corpus merges the catalog and supplemental training items into one
// deduplicated corpus with a deterministic precedence policy.
package corpus

import (
	"strings"

	"github.com/hyperjump/susume/internal/models"
)

// Merge combines catalog and supplemental items into the training corpus.
//
// The catalog is authoritative: a supplemental item whose id already appears
// in the catalog is discarded. Duplicate ids within either input keep their
// first occurrence. The result is the surviving supplemental items in their
// original relative order, followed by the catalog items in theirs; rows with
// empty text (after trimming) are removed. No id appears twice.
func Merge(catalog, supplemental []models.TrainingItem) []models.TrainingItem {
	catalog = dedupe(catalog)
	supplemental = dedupe(supplemental)

	catalogIDs := make(map[int64]struct{}, len(catalog))
	for _, item := range catalog {
		catalogIDs[item.ID] = struct{}{}
	}

	// Explicit set difference: supplemental contributes only ids absent
	// from the catalog.
	merged := make([]models.TrainingItem, 0, len(supplemental)+len(catalog))
	for _, item := range supplemental {
		if _, collides := catalogIDs[item.ID]; collides {
			continue
		}
		merged = append(merged, item)
	}
	merged = append(merged, catalog...)

	out := merged[:0]
	for _, item := range merged {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// dedupe keeps the first occurrence of each id, dropping items with a zero id
// (the marker for an unparseable source id).
func dedupe(items []models.TrainingItem) []models.TrainingItem {
	seen := make(map[int64]struct{}, len(items))
	out := make([]models.TrainingItem, 0, len(items))
	for _, item := range items {
		if item.ID == 0 {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
