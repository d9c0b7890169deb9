package records

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/chaoscascade/daybook/pkg/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// The pool must stay on one connection or each pooled connection would
	// see its own empty in-memory database.
	testDB.SetMaxOpenConns(1)

	if err := db.InitializeSchema(testDB, db.TargetSchemaVersion); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	return testDB
}

func TestSaveRecordCreates(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	content := map[string]any{"hours": 7.5, "quality": float64(8)}
	rec, err := SaveRecord(ctx, testDB, "2026-08-20", CategoryTracker, "sleep", content, []string{"sleep", "good"})
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	if rec.ID == uuid.Nil {
		t.Errorf("Expected record ID to be set, got nil UUID")
	}
	if rec.Metadata.Version != 1 {
		t.Errorf("Expected version 1 on first save, got %d", rec.Metadata.Version)
	}
	if rec.Metadata.UserID != DefaultUserID {
		t.Errorf("Expected user %s, got %s", DefaultUserID, rec.Metadata.UserID)
	}
	if rec.Metadata.CreatedAt <= 0 || rec.Metadata.UpdatedAt <= 0 {
		t.Errorf("Expected timestamps to be set, got created=%f updated=%f", rec.Metadata.CreatedAt, rec.Metadata.UpdatedAt)
	}
	if len(rec.Tags) != 2 || rec.Tags[0] != "sleep" || rec.Tags[1] != "good" {
		t.Errorf("Expected tags [sleep good] in order, got %v", rec.Tags)
	}

	got, ok := rec.Content.(map[string]any)
	if !ok {
		t.Fatalf("Expected map content, got %T", rec.Content)
	}
	if got["hours"] != 7.5 {
		t.Errorf("Expected hours 7.5, got %v", got["hours"])
	}
}

func TestSaveRecordUpsertsInPlace(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	first, err := SaveRecord(ctx, testDB, "2026-08-20", CategoryTracker, "mood", map[string]any{"status": "🙂"}, []string{"mood"})
	if err != nil {
		t.Fatalf("First SaveRecord failed: %v", err)
	}

	second, err := SaveRecord(ctx, testDB, "2026-08-20", CategoryTracker, "mood", map[string]any{"status": "🤕"}, nil)
	if err != nil {
		t.Fatalf("Second SaveRecord failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Upsert must keep the record identity: %s != %s", second.ID, first.ID)
	}
	if second.Metadata.Version != 2 {
		t.Errorf("Expected version 2 after second save, got %d", second.Metadata.Version)
	}
	if second.Metadata.CreatedAt != first.Metadata.CreatedAt {
		t.Errorf("created_at must survive an upsert: %f != %f", second.Metadata.CreatedAt, first.Metadata.CreatedAt)
	}

	content := second.Content.(map[string]any)
	if content["status"] != "🤕" {
		t.Errorf("Expected replaced content, got %v", content["status"])
	}

	// No second row appeared at the address.
	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM records WHERE date = ? AND category = ? AND subcategory = ?", "2026-08-20", CategoryTracker, "mood").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one row at the address, got %d", count)
	}
}

func TestSaveRecordTagSemantics(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	if _, err := SaveRecord(ctx, testDB, "2026-08-21", CategoryJournal, "evening", map[string]any{"text": "long day"}, []string{"tired", "work"}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	// nil tags keep the existing set.
	kept, err := SaveRecord(ctx, testDB, "2026-08-21", CategoryJournal, "evening", map[string]any{"text": "long day, edited"}, nil)
	if err != nil {
		t.Fatalf("SaveRecord with nil tags failed: %v", err)
	}
	if len(kept.Tags) != 2 {
		t.Errorf("nil tags must keep existing tags, got %v", kept.Tags)
	}

	// An empty non-nil slice clears them.
	cleared, err := SaveRecord(ctx, testDB, "2026-08-21", CategoryJournal, "evening", map[string]any{"text": "final"}, []string{})
	if err != nil {
		t.Fatalf("SaveRecord with empty tags failed: %v", err)
	}
	if len(cleared.Tags) != 0 {
		t.Errorf("empty tag slice must clear tags, got %v", cleared.Tags)
	}
}

func TestConcurrentSavesSerialize(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := SaveRecord(ctx, testDB, "2026-08-22", CategoryTracker, "energy", map[string]any{"writer": n}, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Concurrent SaveRecord failed: %v", err)
		}
	}

	rec, err := GetRecord(ctx, testDB, "2026-08-22", CategoryTracker, "energy")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record after concurrent saves")
	}
	if rec.Metadata.Version != writers {
		t.Errorf("Each save must bump version exactly once: expected %d, got %d", writers, rec.Metadata.Version)
	}
}

func TestUpdateRecordByID(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	rec, err := SaveRecord(ctx, testDB, "2026-08-23", CategoryDaily, "notes", map[string]any{"text": "draft"}, []string{"draft"})
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	updated, err := UpdateRecordByID(ctx, testDB, rec.ID, map[string]any{"text": "final"}, []string{"done"})
	if err != nil {
		t.Fatalf("UpdateRecordByID failed: %v", err)
	}
	if updated.Metadata.Version != 2 {
		t.Errorf("Expected version 2 after update, got %d", updated.Metadata.Version)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "done" {
		t.Errorf("Expected replaced tags [done], got %v", updated.Tags)
	}
	if updated.Content.(map[string]any)["text"] != "final" {
		t.Errorf("Expected updated content, got %v", updated.Content)
	}
}

func TestUpdateRecordByIDNotFound(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	_, err := UpdateRecordByID(context.Background(), testDB, uuid.New(), map[string]any{}, nil)
	if err != ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetRecordAbsentAddress(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	rec, err := GetRecord(context.Background(), testDB, "2026-01-01", CategoryTracker, "sleep")
	if err != nil {
		t.Fatalf("GetRecord on empty address errored: %v", err)
	}
	if rec != nil {
		t.Errorf("Expected nil record for empty address, got %+v", rec)
	}
}

func TestDeleteRecordIsIdempotent(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	if _, err := SaveRecord(ctx, testDB, "2026-08-24", CategoryCalendar, "events", map[string]any{"title": "checkup"}, nil); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	if err := DeleteRecord(ctx, testDB, "2026-08-24", CategoryCalendar, "events"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	rec, err := GetRecord(ctx, testDB, "2026-08-24", CategoryCalendar, "events")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if rec != nil {
		t.Errorf("Expected record to be gone after delete")
	}

	// Deleting the now-absent address again must not error.
	if err := DeleteRecord(ctx, testDB, "2026-08-24", CategoryCalendar, "events"); err != nil {
		t.Errorf("Deleting an absent address must be a no-op, got %v", err)
	}
}

func TestDeleteRecordCascadesAcrossPooledConnections(t *testing.T) {
	// A file-backed store with a real connection pool: every pooled
	// connection must carry the foreign-key pragma, or a delete landing on
	// the wrong connection strands the record's tag links.
	dbFile := filepath.Join(t.TempDir(), "daybook.db")
	testDB, err := db.Open(dbFile, true, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open database file: %v", err)
	}
	defer testDB.Close()
	testDB.SetMaxOpenConns(4)

	if err := db.InitializeSchema(testDB, db.TargetSchemaVersion); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	ctx := context.Background()
	rec, err := SaveRecord(ctx, testDB, "2026-08-26", CategoryTracker, "sleep", map[string]any{"hours": 8}, []string{"sleep", "good"})
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	// Hold one connection so the delete below is forced onto a different
	// pooled connection.
	held, err := testDB.Conn(ctx)
	if err != nil {
		t.Fatalf("Failed to hold a pooled connection: %v", err)
	}
	defer held.Close()

	var fk int
	if err := held.QueryRowContext(ctx, "PRAGMA foreign_keys;").Scan(&fk); err != nil {
		t.Fatalf("Failed to read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("Expected foreign keys enabled on every pooled connection, got %d", fk)
	}

	if err := DeleteRecord(ctx, testDB, "2026-08-26", CategoryTracker, "sleep"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}

	var orphans int
	if err := testDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM record_tags WHERE record_id = ?", rec.ID).Scan(&orphans); err != nil {
		t.Fatalf("Failed to count tag links: %v", err)
	}
	if orphans != 0 {
		t.Errorf("Delete must cascade to tag links on every connection, found %d orphaned rows", orphans)
	}
}

func TestRecordListings(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	seed := []struct{ date, category, subcategory string }{
		{"2026-08-25", CategoryTracker, "sleep"},
		{"2026-08-25", CategoryTracker, "energy"},
		{"2026-08-25", CategoryJournal, "morning"},
		{"2026-08-26", CategoryTracker, "sleep"},
	}
	for _, s := range seed {
		if _, err := SaveRecord(ctx, testDB, s.date, s.category, s.subcategory, map[string]any{"seed": true}, nil); err != nil {
			t.Fatalf("SaveRecord(%s/%s/%s) failed: %v", s.date, s.category, s.subcategory, err)
		}
	}

	byDate, err := RecordsByDate(ctx, testDB, "2026-08-25")
	if err != nil {
		t.Fatalf("RecordsByDate failed: %v", err)
	}
	if len(byDate) != 3 {
		t.Errorf("Expected 3 records on 2026-08-25, got %d", len(byDate))
	}

	byCategory, err := RecordsByCategory(ctx, testDB, "2026-08-25", CategoryTracker)
	if err != nil {
		t.Fatalf("RecordsByCategory failed: %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("Expected 2 tracker records on 2026-08-25, got %d", len(byCategory))
	}

	allTrackers, err := AllRecordsByCategory(ctx, testDB, CategoryTracker)
	if err != nil {
		t.Fatalf("AllRecordsByCategory failed: %v", err)
	}
	if len(allTrackers) != 3 {
		t.Errorf("Expected 3 tracker records across dates, got %d", len(allTrackers))
	}
}

func TestBulkInsertRecords(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	recs := []Record{
		{Date: "2026-08-01", Category: CategoryTracker, Subcategory: "sleep", Content: map[string]any{"hours": 8}, Tags: []string{"sleep"}},
		{Date: "2026-08-01", Category: CategoryTracker, Subcategory: "energy", Content: map[string]any{"level": 6}},
		{Date: "2026-08-02", Category: CategoryJournal, Subcategory: "evening", Content: map[string]any{"text": "quiet day"}},
	}
	if err := BulkInsertRecords(ctx, testDB, recs); err != nil {
		t.Fatalf("BulkInsertRecords failed: %v", err)
	}

	stored, err := RecordsInDateRange(ctx, testDB, "2026-08-01", "2026-08-02", "")
	if err != nil {
		t.Fatalf("RecordsInDateRange failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("Expected 3 stored records, got %d", len(stored))
	}

	// Every record in the batch carries the same timestamp and version 1.
	stamp := stored[0].Metadata.UpdatedAt
	for _, rec := range stored {
		if rec.Metadata.Version != 1 {
			t.Errorf("Expected version 1 for bulk record %s/%s, got %d", rec.Date, rec.Subcategory, rec.Metadata.Version)
		}
		if rec.Metadata.UpdatedAt != stamp {
			t.Errorf("Expected one shared timestamp for the batch, got %f and %f", stamp, rec.Metadata.UpdatedAt)
		}
	}
}

func TestBulkInsertDuplicateAddressLastWins(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	recs := []Record{
		{Date: "2026-08-03", Category: CategoryTracker, Subcategory: "mood", Content: map[string]any{"status": "first"}},
		{Date: "2026-08-03", Category: CategoryTracker, Subcategory: "mood", Content: map[string]any{"status": "last"}},
	}
	if err := BulkInsertRecords(ctx, testDB, recs); err != nil {
		t.Fatalf("BulkInsertRecords failed: %v", err)
	}

	rec, err := GetRecord(ctx, testDB, "2026-08-03", CategoryTracker, "mood")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record at the duplicated address")
	}
	if rec.Content.(map[string]any)["status"] != "last" {
		t.Errorf("Duplicate addresses in a batch must resolve last-write-wins, got %v", rec.Content)
	}
	if rec.Metadata.Version != 1 {
		t.Errorf("Batch-internal overwrite must stay at version 1, got %d", rec.Metadata.Version)
	}
}

func TestListTags(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()
	ctx := context.Background()

	if _, err := SaveRecord(ctx, testDB, "2026-08-25", CategoryTracker, "sleep", nil, []string{"sleep", "good"}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if _, err := SaveRecord(ctx, testDB, "2026-08-25", CategoryTracker, "energy", nil, []string{"energy", "good"}); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	tags, err := ListTags(ctx, testDB)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("Expected 3 unique tags, got %d", len(tags))
	}
	// Alphabetical order: energy, good, sleep.
	if tags[0].Tag != "energy" || tags[1].Tag != "good" || tags[2].Tag != "sleep" {
		t.Errorf("Expected alphabetical tag order, got %v", []string{tags[0].Tag, tags[1].Tag, tags[2].Tag})
	}
}
