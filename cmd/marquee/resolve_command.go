package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/media"
	"marquee/internal/pipeline"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		year   int
		kind   string
		series bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve a structured title/year request into a canonical record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}

			descriptor := media.Descriptor{
				Title: title,
				Year:  year,
				Kind:  media.KindMovie,
			}
			if series || strings.EqualFold(kind, string(media.KindSeries)) {
				descriptor.Kind = media.KindSeries
			}

			p, _, st, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			defer st.Close()

			results, err := p.ResolveMany(cmd.Context(), []media.Descriptor{descriptor}, media.Profile{})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches found.")
				return nil
			}
			pipeline.SortByMatch(results)

			record := results[0].Record
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s", record.Title)
			if record.ReleaseYear > 0 {
				fmt.Fprintf(out, " (%d)", record.ReleaseYear)
			}
			fmt.Fprintf(out, " [%s, id %d]\n", record.Kind, record.ID)
			if record.OriginalLanguage != "" {
				fmt.Fprintf(out, "Language: %s\n", record.OriginalLanguage)
			}
			if len(record.Genres) > 0 {
				fmt.Fprintf(out, "Genres:   %s\n", strings.Join(record.Genres, ", "))
			}
			fmt.Fprintf(out, "Rating:   %.1f (%d votes)\n", record.VoteAverage, record.VoteCount)
			if record.HasCriticSummary() {
				fmt.Fprintf(out, "Critics:  %s\n", record.CriticSummary)
			}
			if record.Overview != "" {
				fmt.Fprintf(out, "\n%s\n", record.Overview)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year hint")
	cmd.Flags().StringVar(&kind, "kind", "", "movie or series")
	cmd.Flags().BoolVar(&series, "series", false, "Shorthand for --kind series")

	return cmd
}
