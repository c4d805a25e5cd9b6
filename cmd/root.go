package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "bizdesk",
	Short: "Terminal console for the business backend",
	Long: `bizdesk - A terminal console for managing leads, deals, products and the
rest of the business catalog.

Run without a command to open the console. Use 'bizdesk login' once to
store the API address and token.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUI,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if name := firstNonFlagArg(os.Args[1:]); name != "" && strings.HasPrefix(err.Error(), "unknown command") {
			if s := rootCmd.SuggestionsFor(name); len(s) > 0 {
				fmt.Fprintf(os.Stderr, "\nDid you mean this?\n\t%s\n", strings.Join(s, "\n\t"))
			}
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Console:"},
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	rootCmd.PersistentFlags().AddFlagSet(settingsFlags())
	rootCmd.DisableSuggestions = true
	rootCmd.SuggestionsMinimumDistance = 2
}

// firstNonFlagArg returns the first argument that is not a flag.
func firstNonFlagArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}
