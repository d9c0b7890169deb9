package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// busyTimeoutMS is applied to every connection so that concurrent savers to
// the same address queue on SQLite's write lock instead of failing with
// SQLITE_BUSY.
const busyTimeoutMS = 5000

// Open establishes a connection to the daybook SQLite database.
// baseDSN is the data source name (a file path or ":memory:").
// enableWAL sets journal_mode to WAL; syncPragma sets the synchronous pragma
// (one of OFF, NORMAL, FULL, EXTRA; empty leaves the SQLite default).
func Open(baseDSN string, enableWAL bool, syncPragma string) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_busy_timeout", fmt.Sprintf("%d", busyTimeoutMS))

	// Foreign key support must be on for record_tags ON DELETE CASCADE. It
	// has to ride in the DSN: a plain Exec would reach only one pooled
	// connection and leave the others with the cascade disabled.
	params.Add("_foreign_keys", "on")

	if enableWAL {
		params.Add("_journal_mode", "WAL")
	}

	if syncPragma != "" {
		ucSyncPragma := strings.ToUpper(syncPragma)
		if !validSyncModes[ucSyncPragma] {
			return nil, fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", syncPragma)
		}
		params.Add("_synchronous", ucSyncPragma)
	}

	constructedDSN := baseDSN
	if strings.Contains(baseDSN, "?") {
		constructedDSN += "&" + params.Encode()
	} else {
		constructedDSN += "?" + params.Encode()
	}

	conn, err := sql.Open("sqlite3", constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", constructedDSN, err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", constructedDSN, err)
	}

	return conn, nil
}
