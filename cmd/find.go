package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
	"github.com/mattsolo1/grove-notion/pkg/tree"
)

func NewFindCmd(rt **config.Runtime) *cobra.Command {
	var findAll bool

	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "Find objects by title or text",
		Long: `Search the tree for an object whose title or text equals the name.

Examples:
  gnotion find '!RUN'          # First match, depth-first
  gnotion find Notes --all     # Every match`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			name := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if !findAll {
				n, err := r.Service.FindObject(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, describe(n, true))
				return nil
			}

			root, err := r.Service.Tree(cmd.Context())
			if err != nil {
				return err
			}
			matches := tree.FindAll(root, name)
			if len(matches) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}
			fmt.Fprintf(out, "Found %d results:\n", len(matches))
			for i, n := range matches {
				fmt.Fprintf(out, "%d. %s\n", i+1, describe(n, true))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&findAll, "all", false, "List every match instead of the first")

	return cmd
}
