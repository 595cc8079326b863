package corpus

import (
	"testing"

	"github.com/hyperjump/susume/internal/models"
)

func item(id int64, text string) models.TrainingItem {
	return models.TrainingItem{ID: id, Text: text}
}

// Catalog text must win whenever an id appears in both sources.
func TestMerge_catalogWinsOnCollision(t *testing.T) {
	catalog := []models.TrainingItem{item(1, "Alpha movie")}
	supplemental := []models.TrainingItem{item(1, "WRONG"), item(2, "Beta movie")}

	merged := Merge(catalog, supplemental)

	if len(merged) != 2 {
		t.Fatalf("merged=%d items", len(merged))
	}
	if merged[0].ID != 2 || merged[0].Text != "Beta movie" {
		t.Errorf("first item: %+v", merged[0])
	}
	if merged[1].ID != 1 || merged[1].Text != "Alpha movie" {
		t.Errorf("second item: %+v", merged[1])
	}
}

func TestMerge_uniquenessAndCoverage(t *testing.T) {
	catalog := []models.TrainingItem{item(1, "a"), item(2, "b"), item(3, "c")}
	supplemental := []models.TrainingItem{item(3, "x"), item(4, "d"), item(5, "e")}

	merged := Merge(catalog, supplemental)

	seen := make(map[int64]int)
	for _, m := range merged {
		seen[m.ID]++
	}
	for id := int64(1); id <= 5; id++ {
		if seen[id] != 1 {
			t.Errorf("id %d appears %d times", id, seen[id])
		}
	}
	if len(merged) != 5 {
		t.Errorf("merged=%d items", len(merged))
	}
}

func TestMerge_orderIsSupplementalThenCatalog(t *testing.T) {
	catalog := []models.TrainingItem{item(10, "c1"), item(11, "c2")}
	supplemental := []models.TrainingItem{item(20, "s1"), item(21, "s2")}

	merged := Merge(catalog, supplemental)

	wantIDs := []int64{20, 21, 10, 11}
	for i, want := range wantIDs {
		if merged[i].ID != want {
			t.Errorf("position %d: id=%d want %d", i, merged[i].ID, want)
		}
	}
}

// Duplicate ids inside the supplemental source: first occurrence wins.
func TestMerge_duplicateSupplementalFirstWins(t *testing.T) {
	merged := Merge(nil, []models.TrainingItem{item(7, "first"), item(7, "second")})
	if len(merged) != 1 || merged[0].Text != "first" {
		t.Errorf("merged=%v", merged)
	}
}

func TestMerge_dropsEmptyTextAndZeroIDs(t *testing.T) {
	catalog := []models.TrainingItem{item(1, "  "), item(2, "ok"), item(0, "no id")}
	merged := Merge(catalog, nil)
	if len(merged) != 1 || merged[0].ID != 2 {
		t.Errorf("merged=%v", merged)
	}
}

func TestMerge_emptyInputs(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("merged=%v", got)
	}
}
