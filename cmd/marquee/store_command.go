package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the local media store",
	}
	cmd.AddCommand(newStoreStatsCommand(ctx))
	cmd.AddCommand(newStoreSearchCommand(ctx))
	return cmd
}

func newStoreStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts for the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, st, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Database", st.Path()},
				{"Records", strconv.FormatInt(stats.Records, 10)},
				{"With summaries", strconv.FormatInt(stats.WithSummaries, 10)},
			}
			if stats.MostPopular != "" {
				rows = append(rows, []string{"Most popular", stats.MostPopular})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"FIELD", "VALUE"}, rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newStoreSearchCommand(ctx *commandContext) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search stored records without touching the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, st, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.FindByTitle(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored records matched.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				year := ""
				if record.ReleaseYear > 0 {
					year = strconv.Itoa(record.ReleaseYear)
				}
				rows = append(rows, []string{
					strconv.FormatInt(record.ID, 10),
					record.Title,
					year,
					record.Kind.String(),
					fmt.Sprintf("%.1f", record.VoteAverage),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "TITLE", "YEAR", "KIND", "RATING"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Require an exact release year")
	return cmd
}
