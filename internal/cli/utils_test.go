package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/susume/internal/models"
)

func sampleResponse() *models.RecommendResponse {
	return &models.RecommendResponse{
		Query: "space horror",
		Results: []*models.Recommendation{
			{MovieID: 348, Distance: 0.12, Rank: 1},
			{MovieID: 679, Distance: 0.34, Rank: 2},
		},
		QueryTimeMS: 7,
	}
}

func TestWriteRecommendations_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `2 recommendations for "space horror"`) {
		t.Errorf("missing header: %s", out)
	}
	if !strings.Contains(out, "348") || !strings.Contains(out, "679") {
		t.Errorf("missing movie ids: %s", out)
	}
}

func TestWriteRecommendations_json(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.RecommendResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid json: %v", err)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].MovieID != 348 {
		t.Errorf("decoded=%+v", decoded)
	}
}

func TestWriteLookupResults(t *testing.T) {
	results := []models.LookupResult{{MovieID: 1, Title: "Toy Story", Score: 1.5}}

	var buf bytes.Buffer
	if err := WriteLookupResults(&buf, "toy", results, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Toy Story") {
		t.Errorf("text output missing title: %s", buf.String())
	}

	buf.Reset()
	if err := WriteLookupResults(&buf, "toy", results, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Results []models.LookupResult `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Title != "Toy Story" {
		t.Errorf("decoded=%+v", decoded)
	}
}
