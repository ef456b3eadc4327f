package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cognicore/habitual/internal/api"
	"github.com/cognicore/habitual/pkg/habitual/recommend"
)

type recommendOptions struct {
	explain     bool
	jsonOutput  bool
	interactive bool
}

func newRecommendCmd(opts *globalOptions) *cobra.Command {
	ro := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend [habit...]",
		Short: "Suggest one habit for the given habits",
		Long: `Print one suggestion for the habits given as arguments.

With no arguments a random catalog habit is suggested. With --interactive
each input line is a comma-separated list of habits; "quit" or Ctrl+D exits.
A line containing ";" is split on ";" only, so habits with commas
("Walk 10,000 steps; Journal before bed") can be entered verbatim.`,
		Example: `  habitual recommend "Read a book for 20 minutes" "Meditate for 10 minutes"
  habitual recommend --explain "Walk 10,000 steps"
  habitual recommend -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openSession(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if ro.interactive {
				return runInteractive(ctx, rt.engine, cmd.InOrStdin(), cmd.OutOrStdout(), ro)
			}
			return recommendOnce(ctx, rt.engine, args, cmd.OutOrStdout(), ro)
		},
	}

	cmd.Flags().BoolVarP(&ro.explain, "explain", "e", false, "show strategy, categories and candidate pool")
	cmd.Flags().BoolVarP(&ro.jsonOutput, "json", "j", false, "output as JSON")
	cmd.Flags().BoolVarP(&ro.interactive, "interactive", "i", false, "read habit lists from stdin")
	return cmd
}

func recommendOnce(ctx context.Context, eng *recommend.Engine, habits []string, out io.Writer, ro *recommendOptions) error {
	resp, err := eng.Recommend(ctx, recommend.Request{Habits: habits})
	if err != nil {
		return err
	}
	return printRecommendation(out, resp, ro)
}

func runInteractive(ctx context.Context, eng *recommend.Engine, in io.Reader, out io.Writer, ro *recommendOptions) error {
	fmt.Fprintln(out, `Enter habits separated by commas, or by ";" if a habit has a comma (Ctrl+D to exit):`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}

		if err := recommendOnce(ctx, eng, splitHabits(line), out, ro); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// splitHabits splits a line on ";" when it has one and on "," otherwise,
// dropping blank entries.
func splitHabits(line string) []string {
	sep := ","
	if strings.Contains(line, ";") {
		sep = ";"
	}
	habits := []string{}
	for _, part := range strings.Split(line, sep) {
		if part = strings.TrimSpace(part); part != "" {
			habits = append(habits, part)
		}
	}
	return habits
}

func printRecommendation(out io.Writer, resp recommend.Response, ro *recommendOptions) error {
	if ro.jsonOutput {
		data, err := json.MarshalIndent(api.NewRecommendResponse(resp, ro.explain), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, resp.Suggestion)
	if !ro.explain {
		return nil
	}

	fmt.Fprintf(out, "  strategy: %s\n", resp.Strategy)
	if resp.Dominant != "" {
		fmt.Fprintf(out, "  dominant: %s\n", resp.Dominant)
		fmt.Fprintf(out, "  next:     %s\n", resp.Next)
	}
	if len(resp.Scores) > 0 {
		fmt.Fprintln(out, "  scores:")
		for _, s := range resp.Scores {
			fmt.Fprintf(out, "    %-12s %.3f\n", s.Category, s.Score)
		}
	}
	if len(resp.Pool) > 0 {
		fmt.Fprintf(out, "  pool:     %s\n", strings.Join(resp.Pool, " | "))
	}
	return nil
}
