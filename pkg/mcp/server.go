package mcp

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	daybookpkg "github.com/chaoscascade/daybook/pkg"
	pkgdb "github.com/chaoscascade/daybook/pkg/db"
	"github.com/chaoscascade/daybook/pkg/routing"
	"github.com/chaoscascade/daybook/pkg/secondary"
	"github.com/chaoscascade/daybook/pkg/utils"
)

// SecondaryURLEnv names the endpoint of an optional secondary store. Unset
// means this host runs primary-only and every routed secondary write fails
// loudly.
const SecondaryURLEnv = "DAYBOOK_SECONDARY_URL"

type DaybookMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	router    *routing.Router
	lazySec   *secondary.Lazy
	DbPath    string
}

// NewDaybookMCPServer spins up an MCP server backed by the SQLite database at
// dbPath, with the secondary store wired in when its endpoint is configured.
func NewDaybookMCPServer(dbPath string, walMode bool, syncMode string, logger zerolog.Logger) (*DaybookMCPServer, error) {
	resolvedPath, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create base MCP server.
	s := server.NewMCPServer(
		"Daybook MCP Server",
		daybookpkg.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	dbConn, err := pkgdb.Open(resolvedPath, walMode, syncMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Automatically initialize or migrate the database schema.
	if err := pkgdb.UpgradeDB(dbConn, resolvedPath, pkgdb.TargetSchemaVersion); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to initialize/upgrade database schema for '%s': %w", resolvedPath, err)
	}

	var sec routing.Secondary
	var probe routing.Probe
	var lazySec *secondary.Lazy
	if url := os.Getenv(SecondaryURLEnv); url != "" {
		cfg := secondary.DefaultConfig()
		cfg.URL = url
		lazySec = secondary.NewLazy(cfg, logger)
		sec = lazySec
		probe = secondary.Probe(cfg)
	}

	router := routing.NewRouter(dbConn, routing.DefaultPolicy(), sec, probe)

	return &DaybookMCPServer{
		mcpServer: s,
		db:        dbConn,
		router:    router,
		lazySec:   lazySec,
		DbPath:    resolvedPath,
	}, nil
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *DaybookMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// Router returns the routed store facade the tools operate on.
func (s *DaybookMCPServer) Router() *routing.Router {
	return s.router
}

// DB returns the underlying *sql.DB.
func (s *DaybookMCPServer) DB() *sql.DB {
	return s.db
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *DaybookMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *DaybookMCPServer) Close() error {
	if s.lazySec != nil {
		s.lazySec.Close()
	}
	if s.db != nil {
		// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
		_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: WAL checkpoint failed during close: %v\n", err)
		}
		return s.db.Close()
	}
	return nil
}

// RegisterAllTools attaches the full tool surface to the server.
func (s *DaybookMCPServer) RegisterAllTools() {
	RegisterPingTool(s.mcpServer)
	RegisterSaveRecordTool(s.mcpServer, s.router)
	RegisterGetRecordTool(s.mcpServer, s.router)
	RegisterListRecordsTool(s.mcpServer, s.router)
	RegisterDeleteRecordTool(s.mcpServer, s.router)
	RegisterSearchTagsTool(s.mcpServer, s.router)
	RegisterSearchContentTool(s.mcpServer, s.router)
	RegisterDateRangeTool(s.mcpServer, s.router)
	RegisterListTagsTool(s.mcpServer, s.router)
	RegisterSecureOverwriteTool(s.mcpServer, s.router)
}
