package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const (
	listTagsStatement = `
	SELECT tag, created_at, updated_at FROM tags ORDER BY tag ASC
	`

	deleteRecordTagsStatement = `
	DELETE FROM record_tags WHERE record_id = ?
	`

	upsertTagStatement = `
	INSERT INTO tags (tag) VALUES (?)
	ON CONFLICT(tag) DO UPDATE SET updated_at = unixepoch()
	`

	linkRecordTagStatement = `
	INSERT INTO record_tags (record_id, tag, position) VALUES (?, ?, ?)
	ON CONFLICT(record_id, tag) DO UPDATE SET position = excluded.position
	`
)

// ListTags retrieves all unique tags currently stored.
func ListTags(ctx context.Context, conn *sql.DB) ([]Tag, error) {
	rows, err := conn.QueryContext(ctx, listTagsStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Tag, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

// replaceRecordTagsTx swaps a record's tag list inside an open transaction.
// Position preserves caller ordering on read-back.
func replaceRecordTagsTx(ctx context.Context, tx *sql.Tx, recordID uuid.UUID, tags []string) error {
	if _, err := tx.ExecContext(ctx, deleteRecordTagsStatement, recordID); err != nil {
		return err
	}

	for i, tag := range tags {
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, upsertTagStatement, tag); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, linkRecordTagStatement, recordID, tag, i); err != nil {
			return err
		}
	}

	return nil
}
