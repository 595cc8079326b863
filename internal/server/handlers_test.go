package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/keyword"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/recommender"
)

func newTestServer(t *testing.T, fit bool) *Server {
	t.Helper()
	session := recommender.NewSession(embedding.NewMockEmbedder(8))
	if fit {
		catalog := []models.TrainingItem{
			{ID: 1, Text: "Toy Story animated adventure"},
			{ID: 2, Text: "Jumanji jungle board game"},
			{ID: 3, Text: "Heat crime thriller"},
		}
		if err := session.Fit(context.Background(), catalog, nil); err != nil {
			t.Fatal(err)
		}
	}

	titles, err := keyword.NewTitleIndex(filepath.Join(t.TempDir(), "titles.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { titles.Close() })
	if err := titles.Add(1, "Toy Story"); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return NewServer(session, titles, nil, cfg, zap.NewNop())
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRecommend(t *testing.T) {
	srv := newTestServer(t, true)
	rec := postJSON(t, srv.Router(), "/api/v1/recommend", models.RecommendQuery{Text: "Toy Story animated adventure", K: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp models.RecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].MovieID != 1 {
		t.Errorf("first result id=%d, want 1", resp.Results[0].MovieID)
	}
	if resp.Results[0].Rank != 1 {
		t.Errorf("rank=%d", resp.Results[0].Rank)
	}
}

func TestRecommend_unfitted(t *testing.T) {
	srv := newTestServer(t, false)
	rec := postJSON(t, srv.Router(), "/api/v1/recommend", models.RecommendQuery{Text: "anything"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status=%d, want 503", rec.Code)
	}
}

func TestRecommend_badRequests(t *testing.T) {
	srv := newTestServer(t, true)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status=%d", rec.Code)
	}

	rec = postJSON(t, router, "/api/v1/recommend", models.RecommendQuery{Text: ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: status=%d", rec.Code)
	}
}

func TestLookup(t *testing.T) {
	srv := newTestServer(t, true)
	rec := postJSON(t, srv.Router(), "/api/v1/lookup", models.LookupQuery{Title: "toy story"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []models.LookupResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].MovieID != 1 {
		t.Errorf("results=%v", resp.Results)
	}
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["fitted"] != true {
		t.Errorf("fitted=%v", resp["fitted"])
	}
	if resp["vectors"].(float64) != 3 {
		t.Errorf("vectors=%v", resp["vectors"])
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status=%d", rec.Code)
	}
}
