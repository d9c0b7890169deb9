package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// The UNIQUE(date, category, subcategory) constraint makes upsert the only
	// ordinary write path: a save to an occupied address becomes an update
	// that bumps version exactly once and leaves created_at untouched.
	upsertRecordStatement = `
	INSERT INTO records (id, date, category, subcategory, content, user_id)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(date, category, subcategory) DO UPDATE SET
		content = excluded.content,
		version = records.version + 1,
		updated_at = unixepoch()
	`

	selectRecordIDStatement = `
	SELECT id FROM records
	WHERE date = ? AND category = ? AND subcategory = ?
	`

	getRecordStatement = `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE date = ? AND category = ? AND subcategory = ?
	`

	getRecordByIDStatement = `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE id = ?
	`

	recordsByDateStatement = `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE date = ?
	ORDER BY category, subcategory
	`

	recordsByCategoryStatement = `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE date = ? AND category = ?
	ORDER BY subcategory
	`

	allRecordsByCategoryStatement = `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE category = ?
	ORDER BY date, subcategory
	`

	updateRecordByIDStatement = `
	UPDATE records
	SET content = ?, version = version + 1, updated_at = unixepoch()
	WHERE id = ?
	`

	deleteRecordStatement = `
	DELETE FROM records
	WHERE date = ? AND category = ? AND subcategory = ?
	`
)

// SaveRecord is the upsert write path for a single address. A nil tag slice
// keeps whatever tags the record already has; a non-nil slice (including an
// empty one) replaces them.
func SaveRecord(ctx context.Context, conn *sql.DB, date, category, subcategory string, content any, tags []string) (Record, error) {
	contentJSON, err := marshalContent(content)
	if err != nil {
		return Record{}, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertRecordStatement, uuid.New(), date, category, subcategory, contentJSON, DefaultUserID); err != nil {
		return Record{}, err
	}

	// On a conflicting save the existing row keeps its id; read it back so
	// the tag replacement targets the right record.
	var storedID uuid.UUID
	if err := tx.QueryRowContext(ctx, selectRecordIDStatement, date, category, subcategory).Scan(&storedID); err != nil {
		return Record{}, err
	}

	if tags != nil {
		if err := replaceRecordTagsTx(ctx, tx, storedID, tags); err != nil {
			return Record{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Record{}, err
	}

	return GetRecordByID(ctx, conn, storedID)
}

// UpdateRecordByID updates content (and optionally tags) of a record the
// caller already holds a reference to, skipping the address lookup. Errors
// with ErrRecordNotFound when the id does not exist.
func UpdateRecordByID(ctx context.Context, conn *sql.DB, id uuid.UUID, content any, tags []string) (Record, error) {
	contentJSON, err := marshalContent(content)
	if err != nil {
		return Record{}, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, updateRecordByIDStatement, contentJSON, id)
	if err != nil {
		return Record{}, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Record{}, err
	}
	if rowsAffected == 0 {
		return Record{}, ErrRecordNotFound
	}

	if tags != nil {
		if err := replaceRecordTagsTx(ctx, tx, id, tags); err != nil {
			return Record{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Record{}, err
	}

	return GetRecordByID(ctx, conn, id)
}

// GetRecord is the exact-address lookup. An empty address is not an error:
// the record pointer is nil when nothing is stored there.
func GetRecord(ctx context.Context, conn *sql.DB, date, category, subcategory string) (*Record, error) {
	rec, err := scanRecordRow(conn.QueryRowContext(ctx, getRecordStatement, date, category, subcategory))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := attachTags(ctx, conn, []*Record{&rec}); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecordByID retrieves a record by its internal identifier.
func GetRecordByID(ctx context.Context, conn *sql.DB, id uuid.UUID) (Record, error) {
	rec, err := scanRecordRow(conn.QueryRowContext(ctx, getRecordByIDStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}

	if err := attachTags(ctx, conn, []*Record{&rec}); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecordsByDate returns every record stored for one calendar date.
func RecordsByDate(ctx context.Context, conn *sql.DB, date string) ([]Record, error) {
	return queryRecords(ctx, conn, recordsByDateStatement, date)
}

// RecordsByCategory returns records matching both date and category.
func RecordsByCategory(ctx context.Context, conn *sql.DB, date, category string) ([]Record, error) {
	return queryRecords(ctx, conn, recordsByCategoryStatement, date, category)
}

// AllRecordsByCategory returns records of one category across all dates.
func AllRecordsByCategory(ctx context.Context, conn *sql.DB, category string) ([]Record, error) {
	return queryRecords(ctx, conn, allRecordsByCategoryStatement, category)
}

// DeleteRecord removes the record at an address. Deleting an empty address is
// a no-op, not an error.
func DeleteRecord(ctx context.Context, conn *sql.DB, date, category, subcategory string) error {
	_, err := conn.ExecContext(ctx, deleteRecordStatement, date, category, subcategory)
	return err
}

// BulkInsertRecords inserts many records in one transaction, all stamped with
// the same timestamp and version 1. Duplicated addresses inside the batch
// resolve last-write-wins, still at version 1.
func BulkInsertRecords(ctx context.Context, conn *sql.DB, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	now := float64(time.Now().Unix())

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := bulkInsertTx(ctx, tx, recs, now); err != nil {
		return err
	}

	return tx.Commit()
}

const bulkUpsertRecordStatement = `
INSERT INTO records (id, date, category, subcategory, content, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date, category, subcategory) DO UPDATE SET
	content = excluded.content,
	user_id = excluded.user_id,
	version = 1,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at
`

// bulkInsertTx is shared by BulkInsertRecords and SecureOverwrite. A
// caller-supplied created_at survives; everything else is stamped with now.
func bulkInsertTx(ctx context.Context, tx *sql.Tx, recs []Record, now float64) error {
	for _, rec := range recs {
		contentJSON, err := marshalContent(rec.Content)
		if err != nil {
			return err
		}

		createdAt := rec.Metadata.CreatedAt
		if createdAt == 0 {
			createdAt = now
		}
		userID := rec.Metadata.UserID
		if userID == "" {
			userID = DefaultUserID
		}
		recordID := rec.ID
		if recordID == uuid.Nil {
			recordID = uuid.New()
		}

		if _, err := tx.ExecContext(ctx, bulkUpsertRecordStatement, recordID, rec.Date, rec.Category, rec.Subcategory, contentJSON, userID, createdAt, now); err != nil {
			return err
		}

		if len(rec.Tags) == 0 {
			continue
		}

		var storedID uuid.UUID
		if err := tx.QueryRowContext(ctx, selectRecordIDStatement, rec.Date, rec.Category, rec.Subcategory).Scan(&storedID); err != nil {
			return err
		}
		if err := replaceRecordTagsTx(ctx, tx, storedID, rec.Tags); err != nil {
			return err
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordRow(row rowScanner) (Record, error) {
	var rec Record
	var contentStr string

	err := row.Scan(
		&rec.ID,
		&rec.Date,
		&rec.Category,
		&rec.Subcategory,
		&contentStr,
		&rec.Metadata.UserID,
		&rec.Metadata.Version,
		&rec.Metadata.CreatedAt,
		&rec.Metadata.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}

	rec.Content = normalizeContent(contentStr)
	return rec, nil
}

func queryRecords(ctx context.Context, conn *sql.DB, query string, args ...any) ([]Record, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*Record, len(recs))
	for i := range recs {
		ptrs[i] = &recs[i]
	}
	if err := attachTags(ctx, conn, ptrs); err != nil {
		return nil, err
	}

	return recs, nil
}

// attachTags populates Tags for a batch of records with one join-table query.
func attachTags(ctx context.Context, conn *sql.DB, recs []*Record) error {
	if len(recs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(recs)-1) + "?"
	query := fmt.Sprintf(`
	SELECT record_id, tag FROM record_tags
	WHERE record_id IN (%s)
	ORDER BY record_id, position`, placeholders)

	index := make(map[uuid.UUID]*Record, len(recs))
	args := make([]any, 0, len(recs))
	for _, rec := range recs {
		index[rec.ID] = rec
		args = append(args, rec.ID)
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var recordID uuid.UUID
		var tag string
		if err := rows.Scan(&recordID, &tag); err != nil {
			return err
		}
		if rec, ok := index[recordID]; ok {
			rec.Tags = append(rec.Tags, tag)
		}
	}

	return rows.Err()
}
