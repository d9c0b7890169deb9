package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
)

const (
	// TargetSchemaVersion is the highest schema version this build supports
	// for the recordsdb component.
	TargetSchemaVersion int64 = 1
	// RecordsDBComponent is the component name for the record store schema.
	RecordsDBComponent = "recordsdb"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found or the versions table doesn't exist.
func GetComponentSchemaVersion(conn *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM daybook_versions WHERE component = ?;`
	row := conn.QueryRow(query, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "daybook_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates all recordsdb tables and records the schema
// version for the component.
func InitializeSchema(conn *sql.DB, schemaVersionToSet int64) error {
	if _, err := conn.Exec(SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	insertVersionSQL := `
INSERT INTO daybook_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	if _, err := conn.Exec(insertVersionSQL, RecordsDBComponent, schemaVersionToSet); err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", RecordsDBComponent, schemaVersionToSet, err)
	}

	fmt.Fprintf(os.Stderr, "Component %s initialized/updated to schema version %d\n", RecordsDBComponent, schemaVersionToSet)
	return nil
}

// UpgradeDB brings the recordsdb component of the connected database to
// appTargetSchemaVersion. dbIdentifierForLog is used for logging only.
func UpgradeDB(conn *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	currentDBVersion, err := GetComponentSchemaVersion(conn, RecordsDBComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == 0:
		// Uninitialized or brand new database.
		fmt.Fprintf(os.Stderr, "Component %s in database '%s' appears to be uninitialized. Initializing to schema version %d...\n", RecordsDBComponent, dbIdentifierForLog, appTargetSchemaVersion)
		if err := InitializeSchema(conn, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", RecordsDBComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		fmt.Fprintf(os.Stderr, "Component %s in database '%s' is already up to date (schema version %d).\n", RecordsDBComponent, dbIdentifierForLog, currentDBVersion)
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", RecordsDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", RecordsDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}
