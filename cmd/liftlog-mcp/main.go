package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/localstore"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	dbPath := flag.String("db", "", "path to a local LiftLog sqlite file")
	serverURL := flag.String("server", "", "base URL of a running LiftLog server")
	flag.Parse()

	// stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*dbPath == "") == (*serverURL == "") {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp (-db liftlog.db | -server http://host:port)\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds liftmcp.DataSource
	if *serverURL != "" {
		ds = liftmcp.NewHTTPClient(*serverURL)
		log.Info("using remote server", "url", *serverURL)
	} else {
		store, err := localstore.Open(*dbPath)
		if err != nil {
			log.Error("failed to open store", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		tr := tracker.New(store, 0, log)
		if err := tr.Load(context.Background()); err != nil {
			log.Error("failed to load state", "error", err)
			os.Exit(1)
		}
		ds = liftmcp.TrackerSource{T: tr}
		log.Info("using local store", "path", *dbPath)
	}

	s := liftmcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
