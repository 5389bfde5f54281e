package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd/config"
	"github.com/mattsolo1/grove-notion/pkg/journal"
)

func NewHistoryCmd(rt **config.Runtime) *cobra.Command {
	var (
		buttonName string
		event      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded button events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			entries, err := r.Service.History(journal.Filter{
				Button: buttonName,
				Event:  event,
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No events recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-12s %s %s\n",
					e.RecordedAt.Local().Format("2006-01-02 15:04:05"),
					e.Event,
					labelStyle.Render(e.ButtonName),
					idStyle.Render(e.ButtonID))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&buttonName, "button", "b", "", "Only events of this button (name or id)")
	cmd.Flags().StringVar(&event, "event", "", "Only events of this type (activated, deactivated, pressed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum events")

	return cmd
}
