package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/storage"
)

func (c *cli) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [section...]",
		Short: "Write default scaffolds for sections that have never been saved",
		Long: `Write each section's default scaffold to the document store. Sections
that already hold a document are skipped unless --force is given. With no
arguments every section is seeded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := content.Sections
			if len(args) > 0 {
				sections = make([]content.Section, 0, len(args))
				for _, name := range args {
					s, err := content.ParseSection(name)
					if err != nil {
						return err
					}
					sections = append(sections, s)
				}
			}
			force, _ := cmd.Flags().GetBool("force")

			store, closeFn, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			for _, s := range sections {
				if !force {
					_, err := store.StoredDocument(ctx, s)
					if err == nil {
						fmt.Fprintf(c.out, "skipped %s (exists)\n", s)
						continue
					}
					if !storage.IsNotFound(err) {
						return fmt.Errorf("read %s: %w", s, err)
					}
				}
				if _, err := store.PutDocument(ctx, string(s), content.Default(s)); err != nil {
					return fmt.Errorf("seed %s: %w", s, err)
				}
				fmt.Fprintf(c.out, "seeded %s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite sections that already exist")
	return cmd
}
