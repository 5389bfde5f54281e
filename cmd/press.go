package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
)

func NewPressCmd(rt **config.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "press [name]",
		Short: "Tick a button remotely",
		Long: `Tick a to-do block so that watchers see an activation.

Examples:
  gnotion press           # Press the run button
  gnotion press '!CLEAR'  # Press another button`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			name := strings.Join(args, " ")
			if name == "" {
				name = r.Service.Config.RunButton
			}
			if err := r.Service.Press(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pressed %s\n", labelStyle.Render(name))
			return nil
		},
	}

	return cmd
}
