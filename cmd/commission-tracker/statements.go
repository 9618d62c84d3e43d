package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func statementsCmd() *cobra.Command {
	var carrierID string

	cmd := &cobra.Command{
		Use:   "statements",
		Short: "List processed statement uploads for a carrier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Error("failed to close storage", "error", err)
				}
			}()

			uploads, err := store.ListStatementUploads(cmd.Context(), carrierID)
			if err != nil {
				return fmt.Errorf("failed to list statements: %w", err)
			}

			if len(uploads) == 0 {
				fmt.Println("No statements processed for this carrier.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILE\tSTATUS\tEXTRACTED\tCALCULATED\tAUTO")
			for _, u := range uploads {
				fmt.Fprintf(w, "%.8s…\t%s\t%s\t%s\t%s\t%t\n",
					u.ID, u.FileName, u.Status,
					u.ExtractedTotal.StringFixed(2),
					u.CalculatedTotal.StringFixed(2),
					u.AutomatedApproval)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&carrierID, "carrier", "", "carrier ID to list statements for")
	_ = cmd.MarkFlagRequired("carrier")
	return cmd
}
