package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SecureOverwrite discards the entire store contents and replaces them with
// the supplied records, then forces a durability checkpoint. Replacements get
// a fresh updated_at, keep a caller-supplied created_at, and reset to
// version 1.
//
// There is no partial-success mode: if the replacement insert fails after the
// clear has committed, the store is left empty and the returned error is
// fatal. The operation makes no cryptographic destruction guarantee beyond
// what the underlying SQLite journal mode provides.
func SecureOverwrite(ctx context.Context, conn *sql.DB, replacements []Record) (int64, error) {
	// Step 1: clear everything, committed on its own.
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, stmt := range []string{
		"DELETE FROM record_tags;",
		"DELETE FROM tags;",
		"DELETE FROM records;",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("secure overwrite: failed to clear store: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("secure overwrite: failed to commit clear: %w", err)
	}
	logger.Info().Msg("secure overwrite: existing data cleared")

	// Step 2: insert the replacement set through the bulk path.
	now := float64(time.Now().Unix())
	insertTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("secure overwrite: store cleared but replacement insert could not start: %w", err)
	}
	if err := bulkInsertTx(ctx, insertTx, replacements, now); err != nil {
		insertTx.Rollback()
		return 0, fmt.Errorf("secure overwrite: store cleared but replacement insert failed: %w", err)
	}
	if err := insertTx.Commit(); err != nil {
		return 0, fmt.Errorf("secure overwrite: store cleared but replacement insert failed to commit: %w", err)
	}

	// Step 3: a read-back transaction plus a WAL checkpoint, so the deletion
	// and the insertion are not left as two independently-recoverable
	// operations.
	var count int64
	checkTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("secure overwrite: checkpoint transaction failed to start: %w", err)
	}
	if err := checkTx.QueryRowContext(ctx, "SELECT COUNT(*) FROM records;").Scan(&count); err != nil {
		checkTx.Rollback()
		return 0, fmt.Errorf("secure overwrite: row count read-back failed: %w", err)
	}
	if err := checkTx.Commit(); err != nil {
		return 0, fmt.Errorf("secure overwrite: checkpoint transaction failed to commit: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		return count, fmt.Errorf("secure overwrite: WAL checkpoint failed: %w", err)
	}

	logger.Info().Int64("records", count).Msg("secure overwrite complete")
	return count, nil
}
