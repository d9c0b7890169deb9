package records

import (
	"context"
	"database/sql"
	"testing"
)

func seedSearchFixture(t *testing.T, testDB *sql.DB) {
	t.Helper()
	ctx := context.Background()

	seed := []struct {
		date, category, subcategory string
		content                     map[string]any
		tags                        []string
	}{
		{"2026-08-01", CategoryTracker, "sleep", map[string]any{"notes": "Restful night"}, []string{"sleep", "good"}},
		{"2026-08-02", CategoryTracker, "energy", map[string]any{"notes": "sluggish morning"}, []string{"energy", "low"}},
		{"2026-08-03", CategoryJournal, "evening", map[string]any{"text": "long walk, slept early"}, []string{"walk"}},
		{"2026-08-10", CategoryTracker, "sleep", map[string]any{"notes": "restless"}, []string{"sleep", "poor"}},
	}
	for _, s := range seed {
		if _, err := SaveRecord(ctx, testDB, s.date, s.category, s.subcategory, s.content, s.tags); err != nil {
			t.Fatalf("SaveRecord(%s/%s/%s) failed: %v", s.date, s.category, s.subcategory, err)
		}
	}
}

func TestSearchByTagsAnyOf(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	recs, err := SearchByTags(context.Background(), testDB, []string{"good", "walk"}, nil)
	if err != nil {
		t.Fatalf("SearchByTags failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 records matching any of [good walk], got %d", len(recs))
	}
	// Each match appears once even when several query tags hit it.
	seen := map[string]bool{}
	for _, rec := range recs {
		key := rec.Date + "/" + rec.Subcategory
		if seen[key] {
			t.Errorf("Record %s returned more than once", key)
		}
		seen[key] = true
	}
}

func TestSearchByTagsDateRange(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	recs, err := SearchByTags(context.Background(), testDB, []string{"sleep"}, &DateRange{Start: "2026-08-01", End: "2026-08-05"})
	if err != nil {
		t.Fatalf("SearchByTags failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 sleep record inside the range, got %d", len(recs))
	}
	if recs[0].Date != "2026-08-01" {
		t.Errorf("Expected the 2026-08-01 record, got %s", recs[0].Date)
	}
}

func TestSearchByTagsEmptyQuery(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	recs, err := SearchByTags(context.Background(), testDB, nil, nil)
	if err != nil {
		t.Fatalf("SearchByTags with no tags errored: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Expected empty result for empty tag query, got %d records", len(recs))
	}
}

func TestSearchByContentCaseInsensitive(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	recs, err := SearchByContent(context.Background(), testDB, "restful", "")
	if err != nil {
		t.Fatalf("SearchByContent failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 record containing 'restful' (stored as 'Restful'), got %d", len(recs))
	}
	if recs[0].Subcategory != "sleep" || recs[0].Date != "2026-08-01" {
		t.Errorf("Matched the wrong record: %s/%s", recs[0].Date, recs[0].Subcategory)
	}
}

func TestSearchByContentCategoryFilter(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	all, err := SearchByContent(context.Background(), testDB, "sl", "")
	if err != nil {
		t.Fatalf("SearchByContent failed: %v", err)
	}
	trackerOnly, err := SearchByContent(context.Background(), testDB, "sl", CategoryTracker)
	if err != nil {
		t.Fatalf("SearchByContent with category failed: %v", err)
	}
	if len(trackerOnly) >= len(all) {
		t.Errorf("Category filter must narrow results: %d unfiltered vs %d filtered", len(all), len(trackerOnly))
	}
	for _, rec := range trackerOnly {
		if rec.Category != CategoryTracker {
			t.Errorf("Filtered search leaked category %s", rec.Category)
		}
	}
}

func TestRecordsInDateRangeInclusiveBounds(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	recs, err := RecordsInDateRange(context.Background(), testDB, "2026-08-02", "2026-08-10", "")
	if err != nil {
		t.Fatalf("RecordsInDateRange failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 records in [2026-08-02, 2026-08-10], got %d", len(recs))
	}
	if recs[0].Date != "2026-08-02" || recs[len(recs)-1].Date != "2026-08-10" {
		t.Errorf("Both bounds must be inclusive: got first=%s last=%s", recs[0].Date, recs[len(recs)-1].Date)
	}
}

func TestRecordsInDateRangeCategoryFilter(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	seedSearchFixture(t, testDB)

	recs, err := RecordsInDateRange(context.Background(), testDB, "2026-08-01", "2026-08-31", CategoryJournal)
	if err != nil {
		t.Fatalf("RecordsInDateRange failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 journal record, got %d", len(recs))
	}
	if recs[0].Subcategory != "evening" {
		t.Errorf("Expected the evening journal record, got %s", recs[0].Subcategory)
	}
}
