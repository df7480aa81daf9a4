package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

const defaultConfigPath = "rosterreport.yaml"

// NewRootCommand creates the root command for the rosterreport CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "rosterreport",
		Short:         "Scheduled student roster report automation",
		Long:          "Resolves the current school year, fetches the matching student roster from the database, exports it as a spreadsheet and emails it to the configured recipients.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultConfigPath, "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	// Subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}
