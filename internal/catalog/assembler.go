// Package catalog loads the bulk movie catalog snapshot and assembles
// training texts from its records.
package catalog

import (
	"strings"

	"github.com/hyperjump/susume/internal/models"
)

// Assembler turns a catalog record into one flat text blob. The genre
// vocabulary is fixed at construction; tags outside it are dropped.
type Assembler struct {
	vocab map[string]struct{}
}

// NewAssembler creates an assembler with the given genre vocabulary.
func NewAssembler(genres []string) *Assembler {
	vocab := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		vocab[g] = struct{}{}
	}
	return &Assembler{vocab: vocab}
}

// FilterGenres keeps only tags that exactly match the vocabulary, preserving order.
func (a *Assembler) FilterGenres(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := a.vocab[tag]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// Assemble produces the training item for rec: title, synopsis, and the
// space-joined filtered genres, in that order. Returns ok=false when the
// assembled text is empty after trimming; such records are never embedded.
func (a *Assembler) Assemble(rec *models.CatalogRecord) (models.TrainingItem, bool) {
	genres := a.FilterGenres(rec.Genres)
	text := rec.Title + " " + rec.Synopsis + " " + strings.Join(genres, " ")
	if strings.TrimSpace(text) == "" {
		return models.TrainingItem{}, false
	}
	return models.TrainingItem{ID: rec.ID, Text: text}, true
}
