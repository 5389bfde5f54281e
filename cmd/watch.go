package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
	"github.com/mattsolo1/grove-notion/pkg/button"
	"github.com/mattsolo1/grove-notion/pkg/service"
)

func NewWatchCmd(rt **config.Runtime) *cobra.Command {
	var (
		buttonName string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a button and report presses",
		Long: `Subscribe to a to-do block and report when it is ticked.

A ticked button is reset automatically, so each press is reported as an
activation followed by a deactivation. Press Ctrl+C to stop.

Examples:
  gnotion watch                    # Watch the run button
  gnotion watch --button '!CLEAR'  # Watch another button
  gnotion watch --once             # Stop after one press`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			name := buttonName
			if name == "" {
				name = r.Service.Config.RunButton
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return r.Service.Watch(ctx, name, service.WatchOptions{
				Once: once,
				OnEvent: func(b *button.Button, ev button.Event) {
					fmt.Fprintf(out, "%s %s %s\n",
						b.LastEditedTime().Local().Format("15:04:05"),
						labelStyle.Render(b.Name()),
						ev)
				},
			})
		},
	}

	cmd.Flags().StringVarP(&buttonName, "button", "b", "", "Button to watch (default: run_button)")
	cmd.Flags().BoolVar(&once, "once", false, "Exit after the first press has been reset")

	return cmd
}
