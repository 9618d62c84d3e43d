package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

func carriersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carriers",
		Short: "Manage insurance carriers",
	}
	cmd.AddCommand(carriersAddCmd())
	return cmd
}

func carriersAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Register a carrier so its statements can be processed",
		Args:  cobra.ExactArgs(2),
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

			company := &model.Company{ID: args[0], Name: args[1]}
			if err := store.SaveCompany(cmd.Context(), company); err != nil {
				return fmt.Errorf("failed to save carrier: %w", err)
			}

			slog.Info("carrier registered", "id", company.ID, "name", company.Name)
			return nil
		},
	}
}
