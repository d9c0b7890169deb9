package records

import (
	"context"
	"testing"
)

func TestSecureOverwriteReplacesEverything(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	// Seed real data, including tags, that the overwrite must destroy.
	if _, err := SaveRecord(ctx, testDB, "2026-08-01", CategoryJournal, "evening", map[string]any{"text": "private"}, []string{"private", "health"}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if _, err := SaveRecord(ctx, testDB, "2026-08-02", CategoryTracker, "sleep", map[string]any{"hours": 4}, []string{"sleep"}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	replacements := []Record{
		{Date: "2026-08-01", Category: CategoryTracker, Subcategory: "sleep", Content: map[string]any{"hours": 8}, Tags: []string{"sleep", "good"}, Metadata: Metadata{CreatedAt: 1754006400}},
		{Date: "2026-08-02", Category: CategoryTracker, Subcategory: "energy", Content: map[string]any{"level": 6}},
	}

	count, err := SecureOverwrite(ctx, testDB, replacements)
	if err != nil {
		t.Fatalf("SecureOverwrite failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records after overwrite, got %d", count)
	}

	// The old journal record is gone.
	old, err := GetRecord(ctx, testDB, "2026-08-01", CategoryJournal, "evening")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if old != nil {
		t.Error("Pre-overwrite record survived")
	}

	// Old tags are gone too, not just unlinked: only the replacement tags
	// remain in the vocabulary.
	tags, err := ListTags(ctx, testDB)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	for _, tag := range tags {
		if tag.Tag == "private" || tag.Tag == "health" {
			t.Errorf("Pre-overwrite tag %q survived", tag.Tag)
		}
	}

	// Replacements keep their supplied created_at and reset to version 1.
	replacement, err := GetRecord(ctx, testDB, "2026-08-01", CategoryTracker, "sleep")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if replacement == nil {
		t.Fatal("Expected replacement record to exist")
	}
	if replacement.Metadata.Version != 1 {
		t.Errorf("Expected replacement at version 1, got %d", replacement.Metadata.Version)
	}
	if replacement.Metadata.CreatedAt != 1754006400 {
		t.Errorf("Expected supplied created_at to survive, got %f", replacement.Metadata.CreatedAt)
	}
	if replacement.Metadata.UpdatedAt == 1754006400 {
		t.Errorf("Expected a fresh updated_at, got the supplied created_at")
	}
}

func TestSecureOverwriteToEmpty(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	if _, err := SaveRecord(ctx, testDB, "2026-08-05", CategoryTracker, "mood", map[string]any{"status": "fine"}, []string{"mood"}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	count, err := SecureOverwrite(ctx, testDB, nil)
	if err != nil {
		t.Fatalf("SecureOverwrite with no replacements failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected an empty store, got %d records", count)
	}

	tags, err := ListTags(ctx, testDB)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected no tags after wipe, got %d", len(tags))
	}
}
