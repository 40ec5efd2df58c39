package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/media"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		languages   []string
		genres      []string
		recentLikes int
		explain     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Expand a free-text query and rank the resolved titles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query must not be empty")
			}

			p, _, st, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			defer st.Close()

			profile := media.Profile{
				PreferredLanguages: languages,
				PreferredGenres:    genres,
				RecentHighRatings:  recentLikes,
			}

			results, err := p.Discover(cmd.Context(), query, profile)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches found.")
				return nil
			}

			printResults(cmd, results, explain)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&languages, "language", nil, "Preferred language (repeatable)")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "Preferred genre (repeatable)")
	cmd.Flags().IntVar(&recentLikes, "recent-likes", 0, "Count of relevant titles you rated highly")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show the scoring breakdown per result")

	return cmd
}

func printResults(cmd *cobra.Command, results []media.MatchResult, explain bool) {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		year := ""
		if result.Record.ReleaseYear > 0 {
			year = strconv.Itoa(result.Record.ReleaseYear)
		}
		rows = append(rows, []string{
			strconv.Itoa(result.MatchPercent) + "%",
			result.Record.Title,
			year,
			result.Record.Kind.String(),
			fmt.Sprintf("%.1f", result.Record.VoteAverage),
			strconv.FormatInt(result.Record.VoteCount, 10),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"MATCH", "TITLE", "YEAR", "KIND", "RATING", "VOTES"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight},
	))

	if !explain {
		return
	}
	for _, result := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s — %d%%\n", result.Record.Title, result.MatchPercent)
		for _, reason := range result.Reasons {
			fmt.Fprintf(cmd.OutOrStdout(), "  +%-3d %-16s %s\n", reason.Score, reason.Factor, reason.Description)
		}
	}
}
