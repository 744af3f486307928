package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautyhome/studio-api/internal/auth"
)

// hashCmd prints a bcrypt hash for the settings section's passwordHash or
// recoveryKeyHash fields.
func (c *cli) hashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash [secret]",
		Short: "Print the bcrypt hash of a password or recovery key",
		Long: `Print the bcrypt hash of a password or recovery key, for pasting into
the settings section. Without an argument the secret is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read secret: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}
			if len(secret) < auth.MinPasswordLength {
				return fmt.Errorf("secret must be at least %d characters", auth.MinPasswordLength)
			}

			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, string(hash))
			return nil
		},
	}
	cmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
