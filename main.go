package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notion/cmd"
	"github.com/mattsolo1/grove-notion/cmd/config"
)

var rt *config.Runtime

func main() {
	rootCmd := &cobra.Command{
		Use:          "gnotion",
		Short:        "Mirror a Notion page tree and drive it with to-do buttons",
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)
	cobra.OnInitialize(config.InitConfig)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if !cmd.NeedsRuntime(c) {
			return nil
		}
		var err error
		rt, err = config.InitRuntime()
		return err
	}
	rootCmd.PersistentPostRunE = func(c *cobra.Command, args []string) error {
		if rt == nil {
			return nil
		}
		err := rt.Close()
		rt = nil
		return err
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewTreeCmd(&rt))
	rootCmd.AddCommand(cmd.NewFindCmd(&rt))
	rootCmd.AddCommand(cmd.NewRootCmd(&rt))
	rootCmd.AddCommand(cmd.NewEssentialsCmd(&rt))
	rootCmd.AddCommand(cmd.NewWatchCmd(&rt))
	rootCmd.AddCommand(cmd.NewPressCmd(&rt))
	rootCmd.AddCommand(cmd.NewHistoryCmd(&rt))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		if rt != nil {
			_ = rt.Close()
		}
		os.Exit(1)
	}
}
