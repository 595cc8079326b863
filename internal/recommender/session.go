package recommender

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/susume/internal/corpus"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/vector"
	"go.uber.org/zap"
)

// fittedState owns the embeddings, vector index, and id map of one fit as a
// single unit. A session either has no fitted state or a complete one; there
// is never a partially populated intermediate.
type fittedState struct {
	embeddings [][]float32
	index      *vector.FlatIndex
	idMap      *IndexToID
}

// Session is the recommender lifecycle: Unfitted until a successful Fit or
// Load, Fitted afterward. The fitted state is swapped under a lock, so a
// serving process may Recommend concurrently with a Load triggered by a
// retrain; each call works on the snapshot it started with.
type Session struct {
	embedder embedding.Embedder
	logger   *zap.Logger

	mu     sync.RWMutex
	fitted *fittedState
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets a logger for progress output during fit and load.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession creates an unfitted session using embedder.
func NewSession(embedder embedding.Embedder, opts ...SessionOption) *Session {
	s := &Session{embedder: embedder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// state returns the current fitted state snapshot, nil when unfitted.
func (s *Session) state() *fittedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

func (s *Session) adopt(st *fittedState) {
	s.mu.Lock()
	s.fitted = st
	s.mu.Unlock()
}

// Fitted reports whether the session holds a fitted state.
func (s *Session) Fitted() bool {
	return s.state() != nil
}

// Size returns the number of indexed items, or 0 when unfitted.
func (s *Session) Size() int {
	st := s.state()
	if st == nil {
		return 0
	}
	return st.index.Size()
}

// Dimensions returns the embedding dimension of the fitted state, or 0 when unfitted.
func (s *Session) Dimensions() int {
	st := s.state()
	if st == nil {
		return 0
	}
	return st.index.Dimensions()
}

// Fit merges catalog and supplemental items, embeds the corpus, and builds
// the vector index and id map. On success the previous fitted state (if any)
// is replaced wholesale; on failure it is preserved unchanged.
func (s *Session) Fit(ctx context.Context, catalog, supplemental []models.TrainingItem) error {
	merged := corpus.Merge(catalog, supplemental)
	if s.logger != nil {
		s.logger.Info("corpus merged",
			zap.Int("catalog_items", len(catalog)),
			zap.Int("supplemental_items", len(supplemental)),
			zap.Int("corpus_items", len(merged)))
	}
	if len(merged) == 0 {
		return fmt.Errorf("fit: %w", vector.ErrEmptyInput)
	}

	texts := make([]string, len(merged))
	ids := make([]int64, len(merged))
	for i, item := range merged {
		texts[i] = item.Text
		ids[i] = item.ID
	}

	if s.logger != nil {
		s.logger.Info("embedding corpus", zap.Int("texts", len(texts)))
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("building vector index", zap.Int("vectors", len(embeddings)))
	}
	idx, err := vector.NewFlatIndex(len(embeddings[0]))
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	if err := idx.Build(embeddings); err != nil {
		return fmt.Errorf("build vector index: %w", err)
	}

	s.adopt(&fittedState{
		embeddings: embeddings,
		index:      idx,
		idMap:      NewIndexToID(ids),
	})
	return nil
}

// Recommend embeds text as a single-item batch, searches the index for the k
// nearest items, and resolves positions to external ids. Results are ordered
// by ascending distance. The index and id map come from the same snapshot
// even if the state is swapped mid-call.
func (s *Session) Recommend(ctx context.Context, text string, k int) ([]*models.Recommendation, error) {
	st := s.state()
	if st == nil {
		return nil, ErrNotFitted
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := st.index.Search(embeddings, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	neighbors := results[0]
	recs := make([]*models.Recommendation, len(neighbors))
	for i, nb := range neighbors {
		id, err := st.idMap.Resolve(nb.Position)
		if err != nil {
			return nil, err
		}
		recs[i] = &models.Recommendation{MovieID: id, Distance: float64(nb.Distance), Rank: i + 1}
	}
	return recs, nil
}

// Predict returns the external ids of the k nearest items to text, in
// ascending-distance order.
func (s *Session) Predict(ctx context.Context, text string, k int) ([]int64, error) {
	recs, err := s.Recommend(ctx, text, k)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(recs))
	for i, rec := range recs {
		ids[i] = rec.MovieID
	}
	return ids, nil
}

// Save persists the fitted state to dir as three co-located files.
func (s *Session) Save(dir string) error {
	st := s.state()
	if st == nil {
		return ErrNotFitted
	}
	if s.logger != nil {
		s.logger.Info("saving artifacts", zap.String("dir", dir), zap.Int("items", st.index.Size()))
	}
	return saveArtifacts(dir, st)
}

// Load restores a fitted state from dir. The state is validated and adopted
// atomically: on any error the session keeps its previous state.
func (s *Session) Load(dir string) error {
	st, err := loadArtifacts(dir)
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("artifacts loaded",
			zap.String("dir", dir),
			zap.Int("items", st.index.Size()),
			zap.Int("dimensions", st.index.Dimensions()))
	}
	s.adopt(st)
	return nil
}
