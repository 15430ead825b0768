// Package main is the entry point for the inventory application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/jwulff/inventory-go/internal/api"
	"github.com/jwulff/inventory-go/internal/config"
	"github.com/jwulff/inventory-go/internal/console"
	"github.com/jwulff/inventory-go/internal/logger"
	"github.com/jwulff/inventory-go/internal/storage/sqlite"
)

var commands = map[string]func(config.Config) error{
	"serve": serve,
	"menu":  menu,
	"list":  list,
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		return
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		showUsage()
		return
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, _, err := config.Load("inventory "+os.Args[1], os.Args[2:], os.Getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(level)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("Usage:")
	fmt.Println("  inventory serve [flags]  - Run the web server and JSON API")
	fmt.Println("  inventory menu [flags]   - Interactive console menu")
	fmt.Println("  inventory list [flags]   - Print every ingredient and exit")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --db PATH                - SQLite database file (default inventory.db)")
	fmt.Println("  -p, --port N             - Web server port (default 9090)")
	fmt.Println("  --max-conns N            - Maximum open database connections (default 10)")
	fmt.Println("  --acquire-timeout D      - Wait for a free connection (default 30s)")
	fmt.Println("  --log-level LEVEL        - debug, info, warn or error")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  INVENTORY_DB, INVENTORY_PORT, INVENTORY_MAX_CONNS,")
	fmt.Println("  INVENTORY_ACQUIRE_TIMEOUT, INVENTORY_LOG_LEVEL")
}

// openStore opens the pool and schema. Failure here is fatal to the caller.
func openStore(cfg config.Config) (*sqlite.Store, error) {
	pool, err := sqlite.OpenPool(cfg.PoolConfig())
	if err != nil {
		return nil, err
	}
	logger.Debug("database ready", "path", pool.Path(), "max_conns", cfg.MaxConns)
	return sqlite.NewStore(pool), nil
}

func serve(cfg config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.NewServer(store, store.Pool(), cfg.Addr())
	if err := server.Start(); err != nil {
		logger.Error("server failed to start", "addr", cfg.Addr(), "error", err)
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info("server running", "url", "http://"+server.Addr(), "db", cfg.DBPath)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("stopping", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
		return err
	}
	return nil
}

func menu(cfg config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return console.NewMenu(store, os.Stdin, os.Stdout).Run(context.Background())
}

func list(cfg config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ingredients, err := store.ListIngredients(context.Background())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tQUANTITY\tUNIT\tLAST EDITED")
	for _, ing := range ingredients {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", ing.Name, ing.Quantity, ing.Unit, ing.LastEdited.Format(time.RFC3339))
	}
	return tw.Flush()
}
