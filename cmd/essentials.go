package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
	"github.com/mattsolo1/grove-notion/pkg/tree"
)

func NewEssentialsCmd(rt **config.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "essentials",
		Short: "Check that the well-known objects exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			found, err := r.Service.FindEssentials(cmd.Context())
			if err != nil {
				return err
			}

			present := make(map[string]bool)
			for _, n := range found {
				present[tree.Label(n)] = true
			}
			out := cmd.OutOrStdout()
			missing := 0
			for _, name := range r.Service.Config.Essentials {
				mark := checkedStyle.Render("✓")
				if !present[name] {
					mark = "✗"
					missing++
				}
				fmt.Fprintf(out, "%s %s\n", mark, name)
			}
			if missing > 0 {
				return fmt.Errorf("%d essential objects missing", missing)
			}
			return nil
		},
	}

	return cmd
}
