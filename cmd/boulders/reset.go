package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres/repository"
)

func newResetCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the progress of every user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()

			preview, err := repository.NewResetRepository(a.pool).Preview(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "records: %d, users: %d, points: %d\n", preview.Records, preview.Users, preview.Points)

			if dryRun {
				return nil
			}

			result, err := a.reset.Execute(ctx, entities.CallerManual)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, result.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print what would be deleted")

	return cmd
}
