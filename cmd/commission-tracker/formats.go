package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func formatsCmd() *cobra.Command {
	var carrierID string

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List learned table formats for a carrier",
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

			formats, err := store.ListLearnedFormats(cmd.Context(), carrierID)
			if err != nil {
				return fmt.Errorf("failed to list formats: %w", err)
			}

			if len(formats) == 0 {
				fmt.Println("No learned formats for this carrier.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SIGNATURE\tCOLUMNS\tCONFIDENCE\tUSED\tAUTO-APPROVED\tLAST USED")
			for _, f := range formats {
				fmt.Fprintf(w, "%.12s…\t%d\t%d\t%d\t%d\t%s\n",
					f.Signature, len(f.Headers), f.ConfidenceScore,
					f.UsageCount, f.AutoApprovedCount,
					f.LastUsed.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&carrierID, "carrier", "", "carrier ID to list formats for")
	_ = cmd.MarkFlagRequired("carrier")
	return cmd
}
