package decoy

import (
	"testing"
	"time"

	"github.com/chaoscascade/daybook/pkg/records"
)

func TestGenerateDaysCoverage(t *testing.T) {
	gen := NewGenerator()
	recs := gen.GenerateDays(30)

	// Up to 5% of days skip, each kept day yields at least 4 records.
	if len(recs) < 4*20 {
		t.Fatalf("expected at least 80 records for 30 days, got %d", len(recs))
	}

	dates := map[string]bool{}
	oldest := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	today := time.Now().Format("2006-01-02")
	for _, rec := range recs {
		dates[rec.Date] = true
		if rec.Date < oldest || rec.Date > today {
			t.Errorf("record date %s outside generated window [%s, %s]", rec.Date, oldest, today)
		}
		if rec.Category != records.CategoryTracker {
			t.Errorf("unexpected category %s", rec.Category)
		}
	}
	if len(dates) < 20 {
		t.Errorf("expected at least 20 distinct days, got %d", len(dates))
	}
}

func TestDayProducesCoreTrackers(t *testing.T) {
	gen := NewGenerator()
	recs := gen.Day("2026-08-01")

	bySubcategory := map[string]records.Record{}
	for _, rec := range recs {
		bySubcategory[rec.Subcategory] = rec
	}

	for _, want := range []string{"sleep", "energy", "mental-health", "general-pain"} {
		if _, ok := bySubcategory[want]; !ok {
			t.Errorf("missing %s record for generated day", want)
		}
	}

	for _, rec := range recs {
		if rec.Date != "2026-08-01" {
			t.Errorf("record carries wrong date %s", rec.Date)
		}
		if len(rec.Tags) == 0 {
			t.Errorf("%s record has no tags", rec.Subcategory)
		}
		// The store assigns versions on insert; the generator must not
		// pretend to.
		if rec.Metadata.Version != 0 {
			t.Errorf("%s record carries a version the store would discard: %d", rec.Subcategory, rec.Metadata.Version)
		}
		if rec.Metadata.UpdatedAt < rec.Metadata.CreatedAt {
			t.Errorf("%s record updated before created", rec.Subcategory)
		}
		content, ok := rec.Content.(map[string]any)
		if !ok {
			t.Fatalf("%s content is not a map", rec.Subcategory)
		}
		if _, ok := content["entries"]; !ok {
			t.Errorf("%s content missing entries", rec.Subcategory)
		}
	}
}

func TestSleepEnergyStayInRange(t *testing.T) {
	gen := NewGenerator()
	for i := 0; i < 50; i++ {
		recs := gen.Day("2026-08-02")
		for _, rec := range recs {
			if rec.Subcategory != "energy" {
				continue
			}
			entries := rec.Content.(map[string]any)["entries"].([]any)
			entry := entries[0].(map[string]any)
			level := entry["level"].(int)
			if level < 1 || level > 10 {
				t.Fatalf("energy level %d out of range", level)
			}
		}
	}
}
