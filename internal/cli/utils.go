// Package cli provides output helpers for the susume CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/susume/internal/models"
)

// OutputFormat is the format for CLI result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRecommendations writes a recommend response to w in the given format.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeRecommendationsText(w, response)
		return nil
	}
}

func writeRecommendationsText(w io.Writer, response *models.RecommendResponse) {
	fmt.Fprintf(w, "\n%d recommendations for %q in %dms\n\n",
		len(response.Results), response.Query, response.QueryTimeMS)
	for _, rec := range response.Results {
		fmt.Fprintf(w, "%3d. movie %-10d distance %.4f\n", rec.Rank, rec.MovieID, rec.Distance)
	}
	fmt.Fprintln(w)
}

// WriteLookupResults writes title lookup matches to w in the given format.
func WriteLookupResults(w io.Writer, query string, results []models.LookupResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"query": query, "results": results})
	default:
		fmt.Fprintf(w, "\n%d titles matching %q\n\n", len(results), query)
		for _, r := range results {
			fmt.Fprintf(w, "  %-10d %s (score %.4f)\n", r.MovieID, r.Title, r.Score)
		}
		fmt.Fprintln(w)
		return nil
	}
}

// PrintRecommendations prints a recommend response to stdout in text format.
func PrintRecommendations(response *models.RecommendResponse) {
	_ = WriteRecommendations(os.Stdout, response, OutputText)
}
