package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	pkgdb "github.com/chaoscascade/daybook/pkg/db"
	"github.com/chaoscascade/daybook/pkg/records"
	"github.com/chaoscascade/daybook/pkg/routing"
	"github.com/chaoscascade/daybook/pkg/secondary"
	"github.com/chaoscascade/daybook/pkg/utils"
)

var (
	dbPath       string
	walMode      bool
	syncMode     string
	secondaryURL string
)

// newLogger writes structured logs to stderr so command output on stdout
// stays clean.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

func openDB() (*sql.DB, error) {
	resolvedPath, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.Open(resolvedPath, walMode, syncMode)
	if err != nil {
		return nil, err
	}

	if err := pkgdb.UpgradeDB(dbConn, resolvedPath, pkgdb.TargetSchemaVersion); err != nil {
		dbConn.Close()
		return nil, err
	}
	return dbConn, nil
}

// openRouter builds the routed store facade over a fresh connection. The
// returned cleanup closes everything the router holds.
func openRouter() (*routing.Router, func(), error) {
	dbConn, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	var sec routing.Secondary
	var probe routing.Probe
	var lazySec *secondary.Lazy
	if secondaryURL != "" {
		cfg := secondary.DefaultConfig()
		cfg.URL = secondaryURL
		lazySec = secondary.NewLazy(cfg, newLogger())
		sec = lazySec
		probe = secondary.Probe(cfg)
	}

	router := routing.NewRouter(dbConn, routing.DefaultPolicy(), sec, probe)
	cleanup := func() {
		if lazySec != nil {
			lazySec.Close()
		}
		dbConn.Close()
	}
	return router, cleanup, nil
}

// formatTimestamp converts a Unix timestamp (float64, seconds since epoch)
// to a human-readable string in RFC3339 format.
func formatTimestamp(timestamp float64) string {
	timeObj := time.Unix(int64(timestamp), 0)
	return timeObj.Format(time.RFC3339)
}

func printRecord(rec records.Record) {
	fmt.Printf("Address: %s / %s / %s\n", rec.Date, rec.Category, rec.Subcategory)
	if rec.ID != uuid.Nil {
		fmt.Printf("ID: %s\n", rec.ID)
	}
	content, err := json.MarshalIndent(rec.Content, "", "  ")
	if err != nil {
		content = []byte(fmt.Sprintf("%v", rec.Content))
	}
	fmt.Printf("Content: %s\n", content)
	if len(rec.Tags) > 0 {
		fmt.Printf("Tags: %v\n", rec.Tags)
	}
	fmt.Printf("Version: %d\n", rec.Metadata.Version)
	fmt.Printf("Created: %s\n", formatTimestamp(rec.Metadata.CreatedAt))
	fmt.Printf("Updated: %s\n", formatTimestamp(rec.Metadata.UpdatedAt))
}

func printRecordList(recs []records.Record) {
	if len(recs) == 0 {
		fmt.Println("No records found.")
		return
	}
	for i, rec := range recs {
		if i > 0 {
			fmt.Println("---")
		}
		printRecord(rec)
	}
	fmt.Printf("\n%d record(s).\n", len(recs))
}
