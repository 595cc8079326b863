package recommender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
)

func item(id int64, text string) models.TrainingItem {
	return models.TrainingItem{ID: id, Text: text}
}

func fittedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(embedding.NewMockEmbedder(32))
	catalog := []models.TrainingItem{
		item(1, "Alpha movie"),
		item(2, "Beta movie"),
	}
	supplemental := []models.TrainingItem{item(3, "Gamma movie")}
	if err := s.Fit(context.Background(), catalog, supplemental); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSession_fitPredict(t *testing.T) {
	s := fittedSession(t)
	if !s.Fitted() {
		t.Fatal("session should be fitted")
	}
	if s.Size() != 3 {
		t.Errorf("Size=%d", s.Size())
	}

	// k larger than the corpus is clamped; the exact text match ranks first.
	ids, err := s.Predict(context.Background(), "Alpha movie", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d ids", len(ids))
	}
	if ids[0] != 1 {
		t.Errorf("nearest id=%d", ids[0])
	}
}

func TestSession_selfNearestDistanceZero(t *testing.T) {
	s := fittedSession(t)
	recs, err := s.Recommend(context.Background(), "Beta movie", 1)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].MovieID != 2 {
		t.Errorf("nearest id=%d", recs[0].MovieID)
	}
	if recs[0].Distance > 1e-6 {
		t.Errorf("self distance=%f", recs[0].Distance)
	}
}

func TestSession_recommendOrdering(t *testing.T) {
	s := fittedSession(t)
	recs, err := s.Recommend(context.Background(), "some other film", 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Distance < recs[i-1].Distance {
			t.Errorf("distances decrease at %d", i)
		}
		if recs[i].Rank != i+1 {
			t.Errorf("rank %d at %d", recs[i].Rank, i)
		}
	}
}

func TestSession_unfittedUsage(t *testing.T) {
	s := NewSession(embedding.NewMockEmbedder(8))
	if s.Fitted() {
		t.Fatal("new session should be unfitted")
	}
	if _, err := s.Predict(context.Background(), "x", 1); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Predict err=%v", err)
	}
	if err := s.Save(t.TempDir()); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Save err=%v", err)
	}
}

func TestSession_refitReplacesState(t *testing.T) {
	s := fittedSession(t)
	if err := s.Fit(context.Background(), []models.TrainingItem{item(9, "Only movie")}, nil); err != nil {
		t.Fatal(err)
	}
	if s.Size() != 1 {
		t.Errorf("Size after refit=%d", s.Size())
	}
	ids, err := s.Predict(context.Background(), "anything", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 9 {
		t.Errorf("ids=%v", ids)
	}
}

func TestSession_fitEmptyCorpus(t *testing.T) {
	s := NewSession(embedding.NewMockEmbedder(8))
	if err := s.Fit(context.Background(), nil, nil); err == nil {
		t.Error("expected error for empty corpus")
	}
	if s.Fitted() {
		t.Error("session should stay unfitted")
	}
}

// failingEmbedder errors on every call, to exercise fit failure paths.
type failingEmbedder struct{}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("model exploded")
}
func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("model exploded")
}
func (f *failingEmbedder) Dimensions() int { return 8 }
func (f *failingEmbedder) Close() error    { return nil }

func TestSession_failedFitPreservesPriorState(t *testing.T) {
	s := fittedSession(t)
	s.embedder = &failingEmbedder{}
	err := s.Fit(context.Background(), []models.TrainingItem{item(5, "new")}, nil)
	if err == nil {
		t.Fatal("expected embed failure")
	}
	if !s.Fitted() || s.Size() != 3 {
		t.Errorf("prior state lost: fitted=%v size=%d", s.Fitted(), s.Size())
	}
}

func TestSession_concurrentReloadAndRecommend(t *testing.T) {
	dir := t.TempDir()
	s := fittedSession(t)
	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}

	known := map[int64]bool{1: true, 2: true, 3: true}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.Load(dir); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			recs, err := s.Recommend(context.Background(), "Alpha movie", 3)
			if err != nil {
				t.Errorf("recommend: %v", err)
				return
			}
			for _, rec := range recs {
				if !known[rec.MovieID] {
					t.Errorf("resolved unknown id %d", rec.MovieID)
				}
			}
		}()
	}
	wg.Wait()
}
