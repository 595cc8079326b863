package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hyperjump/susume/internal/models"
	"go.uber.org/zap"
)

// Loader reads the catalog CSV snapshot. Expected columns: id, title (or
// original_title), synopsis (or overview), and genres as a serialized list
// of {id, name} tag objects. Rows with a missing or non-numeric id are
// skipped silently; unrecognized genre payloads yield no genres.
type Loader struct {
	path      string
	assembler *Assembler
	logger    *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for debug output (skipped rows, totals).
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader for the CSV at path with the given genre vocabulary.
func NewLoader(path string, genres []string, opts ...LoaderOption) *Loader {
	ld := &Loader{path: path, assembler: NewAssembler(genres)}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Assembler returns the loader's text assembler.
func (l *Loader) Assembler() *Assembler {
	return l.assembler
}

// LoadRecords parses the snapshot into catalog records, dropping rows whose
// id cannot be parsed and filtering genres to the vocabulary.
func (l *Loader) LoadRecords() ([]*models.CatalogRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []*models.CatalogRecord
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row in a messy snapshot: skip, keep going.
			skipped++
			continue
		}
		rec, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		rec.Genres = l.assembler.FilterGenres(rec.Genres)
		records = append(records, rec)
	}
	if l.logger != nil {
		l.logger.Debug("catalog loaded",
			zap.Int("records", len(records)),
			zap.Int("skipped", skipped))
	}
	return records, nil
}

// LoadItems parses the snapshot and assembles training items, dropping
// records whose assembled text is empty.
func (l *Loader) LoadItems() ([]models.TrainingItem, error) {
	records, err := l.LoadRecords()
	if err != nil {
		return nil, err
	}
	items := make([]models.TrainingItem, 0, len(records))
	for _, rec := range records {
		if item, ok := l.assembler.Assemble(rec); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// columnSet holds resolved column positions.
type columnSet struct {
	id, title, synopsis, genres int
}

func resolveColumns(header []string) (columnSet, error) {
	cols := columnSet{id: -1, title: -1, synopsis: -1, genres: -1}
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "id", "movie_id":
			cols.id = i
		case "title", "original_title":
			cols.title = i
		case "synopsis", "overview":
			cols.synopsis = i
		case "genres":
			cols.genres = i
		}
	}
	if cols.id < 0 || cols.title < 0 || cols.synopsis < 0 || cols.genres < 0 {
		return cols, fmt.Errorf("catalog header missing required columns (have %v)", header)
	}
	return cols, nil
}

func parseRow(row []string, cols columnSet) (*models.CatalogRecord, bool) {
	max := cols.id
	for _, c := range []int{cols.title, cols.synopsis, cols.genres} {
		if c > max {
			max = c
		}
	}
	if len(row) <= max {
		return nil, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[cols.id]), 10, 64)
	if err != nil {
		return nil, false
	}
	return &models.CatalogRecord{
		ID:       id,
		Title:    row[cols.title],
		Synopsis: row[cols.synopsis],
		Genres:   ParseGenreTags(row[cols.genres]),
	}, true
}

// genreTag is the {id, name} object inside the serialized genres column.
type genreTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ParseGenreTags extracts genre names from the serialized tag list. The
// snapshot stores Python-style literals ('single quotes'), so a quote
// normalization pass is tried when strict JSON fails. An unparseable
// payload yields no genres rather than an error.
func ParseGenreTags(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil
	}
	var tags []genreTag
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		normalized := strings.ReplaceAll(s, "'", `"`)
		if err := json.Unmarshal([]byte(normalized), &tags); err != nil {
			return nil
		}
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	return names
}
