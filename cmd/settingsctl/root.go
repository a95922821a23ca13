package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"invoicedesk/internal/config"
	"invoicedesk/internal/container"
	"invoicedesk/internal/database"
)

// Shared CLI flags
var dataDir string

// env is the opened settings stack for one command invocation.
type env struct {
	cfg       *config.Config
	db        *gorm.DB
	container *container.Container
}

func (e *env) Close() {
	e.container.Close()
	if e.db != nil {
		_ = database.Close(e.db)
	}
}

func openEnv(ctx context.Context) (*env, error) {
	dir := dataDir
	if dir == "" {
		var err error
		if dir, err = config.DataDir(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		cfg.Logger.Warn("Ignoring invalid config file", "path", cfg.ConfigPath, "error", err)
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		cfg.Logger.Warn("Database unavailable, using local storage", "path", cfg.DatabasePath, "error", err)
		db = nil
	}

	c, err := container.New(ctx, cfg, db)
	if err != nil {
		if db != nil {
			_ = database.Close(db)
		}
		return nil, err
	}
	return &env{cfg: cfg, db: db, container: c}, nil
}

// withEnv adapts fn to a cobra RunE that opens and closes the settings stack.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "settingsctl",
		Short: "Inspect and edit InvoiceDesk settings",
		Long: `settingsctl reads and writes the settings of the InvoiceDesk desktop app.

It opens the same data directory as the app (override with --data-dir or
INVOICEDESK_DATA_DIR), so changes are visible the next time the app reads them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: platform data directory)")

	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(pathsCmd())
	rootCmd.AddCommand(companyCmd())

	return rootCmd
}
