package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/susume/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.TMDBConfig{
		BaseURL:       srv.URL,
		AccessToken:   "test-token",
		RateLimit:     1000,
		RateWindowSec: 1,
	})
}

func TestMovieRecord(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header=%q", got)
		}
		if r.URL.Path != "/movie/348" {
			t.Errorf("path=%s", r.URL.Path)
		}
		fmt.Fprint(w, `{"original_title": "Alien", "overview": "In space.", "genres": [{"id": 27, "name": "Horror"}, {"id": 878, "name": "Science Fiction"}]}`)
	})

	rec, err := c.MovieRecord(context.Background(), 348)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != 348 {
		t.Errorf("id=%d", rec.ID)
	}
	want := "Alien In space. Horror Science Fiction"
	if rec.Text != want {
		t.Errorf("text=%q want %q", rec.Text, want)
	}
}

func TestMovieRecord_errorStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	if _, err := c.MovieRecord(context.Background(), 1); err == nil {
		t.Error("expected error for 404")
	}
}

func TestEnrichAll_skipsFailures(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/2" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"original_title": "T", "overview": "O", "genres": []}`)
	})

	records, err := c.EnrichAll(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != 1 || records[1].ID != 3 {
		t.Errorf("records=%v", records)
	}
}

func TestEnrichAll_contextCancel(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.EnrichAll(ctx, []int64{1, 2}); err == nil {
		t.Error("expected context error")
	}
}
