package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/engine"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/ingest"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

func processCmd() *cobra.Command {
	var carrierID string

	cmd := &cobra.Command{
		Use:   "process [files...]",
		Short: "Process commission statement files through the approval pipeline",
		Long: `Extracts tables from the given statement files, auto-applies any learned
format for the carrier, classifies summary rows, reconciles totals, and
records an approved or needs_review status for each statement.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Error("failed to close storage", "error", err)
				}
			}()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			approvalEngine := engine.New(store, nil)
			extractor := ingest.NewExcelExtractor()

			bar := progressbar.NewOptions(len(args),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Processing statements..."),
			)

			approved, review := 0, 0
			for _, path := range args {
				extraction, err := extractor.Extract(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("failed to extract %s: %w", path, err)
				}

				result, err := approvalEngine.ProcessStatement(cmd.Context(), carrierID, filepath.Base(path), extraction)
				if err != nil {
					return fmt.Errorf("failed to process %s: %w", path, err)
				}

				switch result.Upload.Status {
				case model.StatementApproved:
					approved++
				case model.StatementNeedsReview:
					review++
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)

			slog.Info("processing complete",
				"files", len(args),
				"approved", approved,
				"needs_review", review)
			return nil
		},
	}

	cmd.Flags().StringVar(&carrierID, "carrier", "", "carrier ID the statements belong to")
	_ = cmd.MarkFlagRequired("carrier")
	return cmd
}
