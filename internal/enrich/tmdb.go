// Package enrich gathers supplemental movie metadata from the TMDB API.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/models"
)

// Client fetches movie metadata from TMDB and flattens it into supplemental
// records. Requests are rate limited (the API allows 40 requests per 2
// seconds); per-item failures are logged and skipped, never fatal.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a logger for per-item failures and progress.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient overrides the HTTP client (used by tests).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// NewClient creates a TMDB client from cfg.
func NewClient(cfg config.TMDBConfig, opts ...ClientOption) *Client {
	window := time.Duration(cfg.RateWindowSec) * time.Second
	if window <= 0 {
		window = 2 * time.Second
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 40
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), limit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// movieResponse is the subset of the TMDB movie payload we flatten.
type movieResponse struct {
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	Genres        []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// MovieRecord fetches one movie and flattens it to a supplemental record:
// original title, overview, and all genre names, space-joined in that order.
func (c *Client) MovieRecord(ctx context.Context, tmdbID int64) (models.SupplementalRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.SupplementalRecord{}, err
	}

	url := fmt.Sprintf("%s/movie/%d?language=en-US", c.baseURL, tmdbID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.SupplementalRecord{}, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return models.SupplementalRecord{}, fmt.Errorf("request movie %d: %w", tmdbID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.SupplementalRecord{}, fmt.Errorf("movie %d: status %d: %s", tmdbID, resp.StatusCode, string(body))
	}

	var movie movieResponse
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return models.SupplementalRecord{}, fmt.Errorf("decode movie %d: %w", tmdbID, err)
	}

	genres := make([]string, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		genres = append(genres, g.Name)
	}
	text := movie.OriginalTitle + " " + movie.Overview + " " + strings.Join(genres, " ")
	return models.SupplementalRecord{ID: tmdbID, Text: text}, nil
}

// EnrichAll fetches records for all ids, skipping ids that fail. The returned
// records keep the input order of the ids that succeeded.
func (c *Client) EnrichAll(ctx context.Context, tmdbIDs []int64) ([]models.SupplementalRecord, error) {
	records := make([]models.SupplementalRecord, 0, len(tmdbIDs))
	for _, id := range tmdbIDs {
		rec, err := c.MovieRecord(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			if c.logger != nil {
				c.logger.Warn("enrich failed", zap.Int64("tmdb_id", id), zap.Error(err))
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
