package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/votegate/cliparse"
	"github.com/danielhkuo/votegate/db"
	"github.com/danielhkuo/votegate/ledger"
	"github.com/danielhkuo/votegate/middleware"
	"github.com/danielhkuo/votegate/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		slog.Error("invalid database type", "error", err)
		os.Exit(1)
	}

	// Open the ledger (connects, pings and creates the schema)
	store, err := ledger.Open(dialect, cfg.DatabaseURL, cfg.QueryTimeout)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", dialect)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Database schema ready", "type", dialect)

	if !cfg.StartOpen {
		slog.Info("Voting starts closed; open it via POST /api/system-status")
	}

	// Create router
	mux := router.NewRouter(store, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
