package cli

import (
	"fmt"

	"github.com/hadron-dev/hadron/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hadron <app-id> <exe-path>",
		Short: "Run a Windows executable inside a Steam game's Proton prefix",
		Long: `Hadron finds where a Steam game is installed, which Proton build the
client runs it with, and which prefix it uses, then starts another
executable from the game's install directory the same way.

The executable path is relative to the game's install directory.
Settings are read from flags, HADRON_* environment variables and
$XDG_CONFIG_HOME/hadron/config.hcl, in that order.`,
		Args:          cobra.ExactArgs(2),
		RunE:          RunLaunch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Flags().BoolP("dry-run", "n", false, "Print the environment and command instead of running it")

	persistent := rootCmd.PersistentFlags()
	persistent.StringP("steam-dir", "s", "", "Steam client root (default: auto-detect)")
	persistent.StringP("user-id", "u", "", "Steam user whose launch options apply (default: most recently active)")
	persistent.String("compat-tool", "", "Compatibility tool used when the client has no mapping (default: "+config.DefaultCompatTool+")")
	persistent.String("config", "", "Path to config.hcl")
	persistent.String("log-level", "", "Log level: debug|info|warn|error")
	persistent.String("log-format", "", "Log format: text|json")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	infoCmd := &cobra.Command{
		Use:   "info <app-id>",
		Short: "Show how an app would be launched",
		Args:  cobra.ExactArgs(1),
		RunE:  RunInfo,
	}
	infoCmd.Flags().String("format", "text", "Output format: text|json|yaml")

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List installed compatibility tools",
		Args:  cobra.NoArgs,
		RunE:  RunTools,
	}
	toolsCmd.Flags().Bool("json", false, "Print machine-readable tool list")

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the Steam installation and stored launch options",
		Args:  cobra.NoArgs,
		RunE:  RunDoctor,
	}
	doctorCmd.Flags().Bool("json", false, "Print machine-readable doctor output")

	vdfCmd := &cobra.Command{
		Use:   "vdf <file>",
		Short: "Parse a VDF file and print it",
		Args:  cobra.ExactArgs(1),
		RunE:  RunVDF,
	}
	vdfCmd.Flags().String("format", "vdf", "Output format: vdf|json|yaml")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hadron %s\n", version)
		},
	}

	rootCmd.AddCommand(
		infoCmd,
		toolsCmd,
		doctorCmd,
		vdfCmd,
		versionCmd,
	)

	return rootCmd
}
