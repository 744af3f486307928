package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beautyhome/studio-api/internal/notify"
	"github.com/beautyhome/studio-api/internal/storage"
)

func (c *cli) bookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *storage.Status
			if raw, _ := cmd.Flags().GetString("status"); raw != "" {
				st, ok := storage.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("invalid status %q", raw)
				}
				filter = &st
			}

			store, closeFn, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			bookings := store.ListBookings(cmd.Context(), filter)
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REFERENCE\tSTATUS\tPACKAGE\tAMOUNT\tDATE\tCUSTOMER")
			for _, b := range bookings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\t%s\n",
					b.Reference, b.Status, b.PackageName,
					notify.FormatAmount(b.AmountPaid, b.Currency),
					b.AppointmentDate, b.TimeWindow, b.CustomerName)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("status", "", "only list bookings in this status")
	return cmd
}
