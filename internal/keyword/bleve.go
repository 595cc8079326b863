// Package keyword resolves free-text movie titles to catalog ids with a
// small bleve index.
package keyword

import (
	"fmt"
	"os"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/susume/internal/models"
)

// titleDoc is the indexed shape: one document per catalog movie.
type titleDoc struct {
	Title string `json:"title"`
}

// TitleIndex maps movie titles to catalog ids. It is rebuilt by the train
// pipeline and opened read-mostly by lookup callers.
type TitleIndex struct {
	index bleve.Index
}

// NewTitleIndex creates or opens the index at path. An existing index is
// opened as-is; delete the directory to force a rebuild with a new mapping.
func NewTitleIndex(path string) (*TitleIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open title index: %w", openErr)
		}
		return &TitleIndex{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	titleField := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so "Aliens"
	// does not match a query for "alien" by stem collapse.
	titleField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", titleField)
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create title index: %w", err)
	}
	return &TitleIndex{index: index}, nil
}

// Add indexes one title under its catalog id.
func (t *TitleIndex) Add(id int64, title string) error {
	return t.index.Index(strconv.FormatInt(id, 10), titleDoc{Title: title})
}

// AddBatch indexes records in one bleve batch.
func (t *TitleIndex) AddBatch(records []models.CatalogRecord) error {
	batch := t.index.NewBatch()
	for _, rec := range records {
		if err := batch.Index(strconv.FormatInt(rec.ID, 10), titleDoc{Title: rec.Title}); err != nil {
			return fmt.Errorf("batch title %d: %w", rec.ID, err)
		}
	}
	return t.index.Batch(batch)
}

// Search returns up to limit title matches, best first. With fuzzy set, each
// query term also matches within edit distance 1, which covers most typos.
func (t *TitleIndex) Search(query string, limit int, fuzzy bool) ([]models.LookupResult, error) {
	var q blevequery.Query
	if fuzzy {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("title")
		mq.SetFuzziness(1)
		q = mq
	} else {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("title")
		q = mq
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"title"}
	results, err := t.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}

	out := make([]models.LookupResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		title, _ := hit.Fields["title"].(string)
		out = append(out, models.LookupResult{MovieID: id, Title: title, Score: hit.Score})
	}
	return out, nil
}

// Count returns the number of indexed titles.
func (t *TitleIndex) Count() (uint64, error) {
	return t.index.DocCount()
}

// Close closes the underlying index.
func (t *TitleIndex) Close() error {
	return t.index.Close()
}
