// Package cmd holds the gnotion subcommands.
package cmd

import "github.com/spf13/cobra"

// SkipRuntime is a command annotation: commands carrying it run without a
// configured service, so they work before a token is set.
const SkipRuntime = "gnotion.skip-runtime"

// NeedsRuntime reports whether c needs the service set up before it runs.
func NeedsRuntime(c *cobra.Command) bool {
	for p := c; p != nil; p = p.Parent() {
		if _, ok := p.Annotations[SkipRuntime]; ok {
			return false
		}
		switch p.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}
