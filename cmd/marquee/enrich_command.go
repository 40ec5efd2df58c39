package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <record-id>",
		Short: "Generate a critic summary for a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("record id must be numeric: %w", err)
			}

			_, enricher, st, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			defer st.Close()

			record, err := st.FindByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("no stored record with id %d", id)
			}

			enriched := enricher.Enrich(cmd.Context(), *record)
			out := cmd.OutOrStdout()
			if !enriched.HasCriticSummary() {
				fmt.Fprintf(out, "%s: no critic summary available\n", enriched.Title)
				return nil
			}
			fmt.Fprintf(out, "%s (%d)\n", enriched.Title, enriched.ReleaseYear)
			if enriched.CriticRating > 0 {
				fmt.Fprintf(out, "Critic rating: %.1f\n", enriched.CriticRating)
			}
			fmt.Fprintln(out, enriched.CriticSummary)
			return nil
		},
	}
}
