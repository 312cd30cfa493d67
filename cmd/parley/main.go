// Package main is the entry point for the Parley CLI
package main

import (
	"fmt"
	"os"

	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/db"
	"github.com/spf13/cobra"
)

var cfg *config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Conversation engine for multi-turn AI chat",
		Long: `Parley orchestrates multi-turn conversations with AI providers. It persists
chat history in SQLite, assembles bounded context windows from prior turns,
routes image messages to vision-capable providers, and degrades gracefully
to canned replies when providers fail.`,
		Version: "0.1.0",
	}

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(),
		chatCmd(),
		conversationsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the configured database, initializing the schema on first use
func openStore() (*db.Store, error) {
	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}
