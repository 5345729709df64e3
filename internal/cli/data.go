package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"edluar/pipeline/internal/seed"
	"edluar/pipeline/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := store.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("✓ Schema up to date"))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Load jobs, candidates and applications from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixtures, err := seed.LoadFile(args[0])
		if err != nil {
			return err
		}

		backend, err := store.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer backend.Close()
		if err := backend.Migrate(cmd.Context()); err != nil {
			return err
		}

		res, err := seed.Apply(cmd.Context(), backend, fixtures)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("✓ Seeded "+args[0]))
		fmt.Fprintf(out, "  %s %d\n", labelStyle.Render("Jobs:"), res.Jobs)
		fmt.Fprintf(out, "  %s %d\n", labelStyle.Render("Candidates:"), res.Candidates)
		fmt.Fprintf(out, "  %s %d\n", labelStyle.Render("Applications:"), res.Applications)
		return nil
	},
}
