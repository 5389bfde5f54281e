package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
)

func NewTreeCmd(rt **config.Runtime) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Fetch and print the whole tree under the root page",
		Long: `Resolve every object below the root page and print it as a tree.

Children that fail to load are skipped and reported at the end.

Examples:
  gnotion tree          # Print labels and kinds
  gnotion tree --ids    # Also print object ids`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			root, report, err := r.Service.FetchFullTree(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderTree(out, root, showIDs)
			fmt.Fprintf(out, "\n%d objects", report.Resolved)
			if report.Skipped > 0 {
				fmt.Fprintf(out, ", %d skipped", report.Skipped)
			}
			if report.Leaves > 0 {
				fmt.Fprintf(out, ", %d without content", report.Leaves)
			}
			fmt.Fprintln(out)
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Print object ids")

	return cmd
}
