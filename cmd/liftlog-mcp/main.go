// Command liftlog-mcp serves the LiftLog MCP tools over stdio, backed by a
// running LiftLog server's REST API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (default $LIFTLOG_URL or http://localhost:8080)")
	flag.Parse()

	url := *serverURL
	if url == "" {
		url = os.Getenv("LIFTLOG_URL")
	}
	if url == "" {
		url = "http://localhost:8080"
	}

	// stdout carries the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("liftlog-mcp starting", "version", Version, "server", url)

	s := mcp.New(mcp.NewHTTPClient(url), Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}
