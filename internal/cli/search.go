package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Query the Bing Web Search API from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := newSearchClient().Search(cmd.Context(), strings.Join(args, " "))

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results.")
			return nil
		}
		for _, r := range results {
			fmt.Fprintln(out, r.Title)
			fmt.Fprintln(out, strings.Repeat("-", len([]rune(r.Title))))
			fmt.Fprintln(out, r.Summary)
			fmt.Fprintln(out, r.Link)
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
