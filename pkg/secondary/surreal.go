// Package secondary adapts a SurrealDB instance to the routing layer's
// Secondary interface. The adapter speaks the store's record vocabulary on
// the outside and plain SurrealQL on the inside.
package secondary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go"

	"github.com/chaoscascade/daybook/pkg/records"
	"github.com/chaoscascade/daybook/pkg/routing"
)

// Config describes the SurrealDB endpoint the adapter connects to.
type Config struct {
	URL       string // e.g. ws://localhost:8000/rpc
	Namespace string
	Database  string
	Table     string
}

// DefaultConfig targets a local SurrealDB with the conventional table name.
func DefaultConfig() Config {
	return Config{
		URL:       "ws://localhost:8000/rpc",
		Namespace: "daybook",
		Database:  "daybook",
		Table:     "records",
	}
}

// SurrealStore implements routing.Secondary over a live SurrealDB
// connection.
type SurrealStore struct {
	db     *surrealdb.DB
	cfg    Config
	logger zerolog.Logger
}

// Connect dials the endpoint and selects the configured namespace and
// database. The caller owns the returned store and must Close it.
func Connect(cfg Config, logger zerolog.Logger) (*SurrealStore, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to secondary store at %s: %w", cfg.URL, err)
	}
	if _, err := db.Use(cfg.Namespace, cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to select namespace %q database %q: %w", cfg.Namespace, cfg.Database, err)
	}
	logger.Debug().Str("url", cfg.URL).Msg("secondary store connected")
	return &SurrealStore{db: db, cfg: cfg, logger: logger}, nil
}

func (s *SurrealStore) Close() {
	s.db.Close()
}

// surrealRecord is the document shape stored in SurrealDB. Timestamps stay
// float64 unix seconds to match the primary store's metadata.
type surrealRecord struct {
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Content     any      `json:"content"`
	Tags        []string `json:"tags"`
	UserID      string   `json:"user_id"`
	Version     int64    `json:"version"`
	CreatedAt   float64  `json:"created_at"`
	UpdatedAt   float64  `json:"updated_at"`
}

func (sr surrealRecord) toRecord() records.Record {
	tags := sr.Tags
	if tags == nil {
		tags = []string{}
	}
	return records.Record{
		Date:        sr.Date,
		Category:    sr.Category,
		Subcategory: sr.Subcategory,
		Content:     sr.Content,
		Tags:        tags,
		Metadata: records.Metadata{
			CreatedAt: sr.CreatedAt,
			UpdatedAt: sr.UpdatedAt,
			UserID:    sr.UserID,
			Version:   sr.Version,
		},
	}
}

// Save upserts by address, bumping the stored version when the address
// already exists. The websocket client carries no context, so ctx only
// gates entry.
func (s *SurrealStore) Save(ctx context.Context, rec records.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := s.Get(ctx, rec.Date, rec.Category, rec.Subcategory)
	if err != nil {
		return err
	}

	now := float64(time.Now().Unix())
	doc := surrealRecord{
		Date:        rec.Date,
		Category:    rec.Category,
		Subcategory: rec.Subcategory,
		Content:     rec.Content,
		Tags:        rec.Tags,
		UserID:      rec.Metadata.UserID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.UserID == "" {
		doc.UserID = records.DefaultUserID
	}
	if doc.Content == nil {
		doc.Content = map[string]any{}
	}
	if existing != nil {
		doc.Version = existing.Metadata.Version + 1
		doc.CreatedAt = existing.Metadata.CreatedAt
		if doc.Tags == nil {
			doc.Tags = existing.Tags
		}
	}

	if existing != nil {
		if err := s.deleteByAddress(rec.Date, rec.Category, rec.Subcategory); err != nil {
			return err
		}
	}

	data, err := docToMap(doc)
	if err != nil {
		return err
	}
	if _, err := s.db.Create(s.cfg.Table, data); err != nil {
		return fmt.Errorf("failed to save record to secondary store: %w", err)
	}

	s.logger.Debug().
		Str("date", rec.Date).
		Str("category", rec.Category).
		Str("subcategory", rec.Subcategory).
		Int64("version", doc.Version).
		Msg("secondary record saved")
	return nil
}

// Get returns the record at an exact address, or nil when absent.
func (s *SurrealStore) Get(ctx context.Context, date, category, subcategory string) (*records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.db.Query(
		fmt.Sprintf("SELECT * FROM %s WHERE date = $date AND category = $category AND subcategory = $subcategory LIMIT 1;", s.cfg.Table),
		map[string]any{"date": date, "category": category, "subcategory": subcategory},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query secondary store: %w", err)
	}

	docs, err := decodeQueryResult(raw)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	rec := docs[0].toRecord()
	return &rec, nil
}

// Delete removes the record at an exact address. Absent addresses are a
// no-op.
func (s *SurrealStore) Delete(ctx context.Context, date, category, subcategory string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.deleteByAddress(date, category, subcategory)
}

// Search lists records matching the query; every zero field is
// unconstrained. Results come back ordered by date for stable listings.
func (s *SurrealStore) Search(ctx context.Context, q routing.SecondaryQuery) ([]records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE 1 = 1", s.cfg.Table)
	vars := map[string]any{}
	if q.Category != "" {
		query += " AND category = $category"
		vars["category"] = q.Category
	}
	if q.Term != "" {
		query += " AND string::lowercase(<string> content) CONTAINS string::lowercase($term)"
		vars["term"] = q.Term
	}
	if q.StartDate != "" {
		query += " AND date >= $start"
		vars["start"] = q.StartDate
	}
	if q.EndDate != "" {
		query += " AND date <= $end"
		vars["end"] = q.EndDate
	}
	query += " ORDER BY date, category, subcategory;"

	raw, err := s.db.Query(query, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to search secondary store: %w", err)
	}

	docs, err := decodeQueryResult(raw)
	if err != nil {
		return nil, err
	}
	results := make([]records.Record, 0, len(docs))
	for _, doc := range docs {
		results = append(results, doc.toRecord())
	}
	return results, nil
}

func (s *SurrealStore) deleteByAddress(date, category, subcategory string) error {
	_, err := s.db.Query(
		fmt.Sprintf("DELETE FROM %s WHERE date = $date AND category = $category AND subcategory = $subcategory;", s.cfg.Table),
		map[string]any{"date": date, "category": category, "subcategory": subcategory},
	)
	if err != nil {
		return fmt.Errorf("failed to delete from secondary store: %w", err)
	}
	return nil
}

// docToMap flattens a document through JSON so the client sends plain maps.
func docToMap(doc surrealRecord) (map[string]any, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode secondary record: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("failed to encode secondary record: %w", err)
	}
	return data, nil
}

// queryResponse is one statement result from a SurrealDB query call.
type queryResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// decodeQueryResult round-trips the client's untyped response through JSON
// into typed documents.
func decodeQueryResult(raw any) ([]surrealRecord, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secondary store response: %w", err)
	}

	var responses []queryResponse
	if err := json.Unmarshal(buf, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode secondary store response: %w", err)
	}
	if len(responses) == 0 {
		return nil, nil
	}
	last := responses[len(responses)-1]
	if last.Status != "" && last.Status != "OK" {
		return nil, fmt.Errorf("secondary store query failed with status %s", last.Status)
	}
	if len(last.Result) == 0 {
		return nil, nil
	}

	var docs []surrealRecord
	if err := json.Unmarshal(last.Result, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode secondary store records: %w", err)
	}
	return docs, nil
}
