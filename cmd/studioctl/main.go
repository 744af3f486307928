// Package main provides studioctl, the operator CLI for the studio API:
// schema setup, password hashing, content seeding and booking listings.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/beautyhome/studio-api/internal/bunny"
	"github.com/beautyhome/studio-api/internal/config"
	"github.com/beautyhome/studio-api/internal/logging"
	"github.com/beautyhome/studio-api/internal/storage"
)

var Version = "dev"

// cli carries the state shared by every subcommand.
type cli struct {
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:           "studioctl",
		Short:         "Operator tools for the studio API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, _, err := logging.New(errOut, cfg.LogLevel, "text")
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(c.dbCmd())
	rootCmd.AddCommand(c.hashCmd())
	rootCmd.AddCommand(c.seedCmd())
	rootCmd.AddCommand(c.bookingsCmd())
	return rootCmd
}

// openStore builds the storage facade the server would use.
// The returned func releases the database.
func (c *cli) openStore(ctx context.Context) (*storage.Facade, func(), error) {
	var docs *storage.DocumentStore
	if c.cfg.DocumentStoreEnabled() {
		client := bunny.NewClient(c.cfg.StorageZone, c.cfg.StorageAccessKey,
			bunny.WithBaseURL(c.cfg.StorageAPIURL),
			bunny.WithPublicURL(c.cfg.StoragePublicURL),
			bunny.WithHTTPClient(&http.Client{
				Timeout:   30 * time.Second,
				Transport: &bunny.LoggingTransport{Logger: c.logger},
			}),
		)
		docs = storage.NewDocumentStore(client, c.logger)
	}

	closeFn := func() {}
	var relational storage.Relational
	if c.cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, c.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		relational = db
		closeFn = func() {
			if err := db.Close(); err != nil {
				c.logger.Error("failed to close database", "error", err)
			}
		}
	}
	return storage.NewFacade(docs, relational, c.logger), closeFn, nil
}
