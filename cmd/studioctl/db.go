package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beautyhome/studio-api/internal/storage"
)

func (c *cli) dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the bookings database",
	}
	cmd.AddCommand(c.dbInitCmd())
	return cmd
}

func (c *cli) dbInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the bookings table and indexes",
		Long: `Create the bookings schema in the SQLite database named by DATABASE_URL
or --database-url. Running it again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, _ := cmd.Flags().GetString("database-url")
			if dsn == "" {
				dsn = c.cfg.DatabaseURL
			}
			if dsn == "" {
				return errors.New("no database: set DATABASE_URL or pass --database-url")
			}

			db, err := storage.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			//nolint:errcheck
			defer db.Close()

			fmt.Fprintf(c.out, "schema ready in %s\n", dsn)
			return nil
		},
	}
	cmd.Flags().String("database-url", "", "SQLite database path (overrides DATABASE_URL)")
	return cmd
}
