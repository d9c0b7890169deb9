package records

import (
	"context"
	"testing"
)

func TestNormalizeContentMalformedRow(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	rec, err := SaveRecord(ctx, testDB, "2026-08-10", CategoryTracker, "sleep", map[string]any{"hours": 7}, nil)
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	// Corrupt the stored column behind the API's back, as a buggy legacy
	// writer would have.
	if _, err := testDB.Exec("UPDATE records SET content = 'not json{' WHERE id = ?", rec.ID); err != nil {
		t.Fatalf("Failed to corrupt content column: %v", err)
	}

	got, err := GetRecord(ctx, testDB, "2026-08-10", CategoryTracker, "sleep")
	if err != nil {
		t.Fatalf("GetRecord must not fail on malformed content: %v", err)
	}
	if got == nil {
		t.Fatal("Expected the record to still be readable")
	}
	content, ok := got.Content.(map[string]any)
	if !ok {
		t.Fatalf("Expected empty object substitute, got %T", got.Content)
	}
	if len(content) != 0 {
		t.Errorf("Expected empty object substitute, got %v", content)
	}
}

func TestNormalizeContentUnwrapsPreSerialized(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	// A caller that serialized before saving produces a JSON string whose
	// payload is itself an object.
	rec, err := SaveRecord(ctx, testDB, "2026-08-11", CategoryTracker, "energy", `{"level": 5}`, nil)
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	content, ok := rec.Content.(map[string]any)
	if !ok {
		t.Fatalf("Expected pre-serialized content to be unwrapped into a map, got %T", rec.Content)
	}
	if content["level"] != float64(5) {
		t.Errorf("Expected level 5 after unwrap, got %v", content["level"])
	}
}

func TestNormalizeContentKeepsPlainStrings(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	rec, err := SaveRecord(ctx, testDB, "2026-08-12", CategoryJournal, "morning", "slept well, no complaints", nil)
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	if rec.Content != "slept well, no complaints" {
		t.Errorf("Plain string content must survive the round trip, got %v", rec.Content)
	}
}

func TestSaveRecordNilContent(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	rec, err := SaveRecord(context.Background(), testDB, "2026-08-13", CategoryDaily, "notes", nil, nil)
	if err != nil {
		t.Fatalf("SaveRecord with nil content failed: %v", err)
	}

	content, ok := rec.Content.(map[string]any)
	if !ok || len(content) != 0 {
		t.Errorf("Expected nil content to store as an empty object, got %v", rec.Content)
	}
}
