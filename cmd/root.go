package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
)

func NewRootCmd(rt **config.Runtime) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "root",
		Short: "Show the root page",
		Long: `Locate the root page and remember its id.

Without a configured root_page_id the page is searched by root_page_name,
which must match exactly one page. Use --reset after renaming or moving it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			if reset {
				if err := r.Service.ForgetRoot(cmd.Context()); err != nil {
					return fmt.Errorf("reset root page: %w", err)
				}
			}
			root, err := r.Service.RootPage(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(root, true))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Forget the remembered root page id and search again")

	return cmd
}
