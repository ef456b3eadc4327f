package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cognicore/habitual/pkg/habitual/analytics"
	"github.com/cognicore/habitual/pkg/habitual/config"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var (
		limit      int
		strategy   string
		since      time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the suggestion history",
		Example: `  habitual stats
  habitual stats --since 24h --strategy novel
  habitual stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			st, err := config.OpenStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			q := store.ListQuery{Limit: limit, Strategy: strategy}
			if since > 0 {
				q.Since = time.Now().Add(-since)
			}

			snap, err := analytics.AnalyzeStore(ctx, st, nil, q)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of recent suggestions to read (0 = store default)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "only count one strategy")
	cmd.Flags().DurationVar(&since, "since", 0, "only count suggestions newer than this")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "output as JSON")
	return cmd
}

func printSnapshot(out io.Writer, snap analytics.Snapshot) {
	fmt.Fprintf(out, "Suggestions: %d\n", snap.Total)
	if snap.Total == 0 {
		return
	}
	fmt.Fprintf(out, "Fallback rate: %.1f%%\n", snap.FallbackRate*100)

	fmt.Fprintln(out, "\nBy strategy:")
	for _, s := range []string{"novel", "random", "fallback_unused", "fallback_any"} {
		if n := snap.ByStrategy[s]; n > 0 {
			fmt.Fprintf(out, "  %-16s %d\n", s, n)
		}
	}

	printCounts(out, "Dominant categories", snap.ByDominant)
	printCounts(out, "Suggested categories", snap.ByNext)
	printCounts(out, "Top suggestions", snap.TopSuggestions)
}

func printCounts(out io.Writer, title string, counts []analytics.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, c := range counts {
		fmt.Fprintf(out, "  %-32s %d\n", c.Key, c.Count)
	}
}
