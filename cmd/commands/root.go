package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
)

var (
	globalQuiet   bool
	globalNoColor bool
	globalYes     bool
)

// NewRootCommand builds the proposal command tree. With no subcommand it
// opens the default proposal in the editor.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "proposal",
		Short: "Terminal-based proposal and pricing editor",
		Long: `Proposal is a terminal-based editor for client proposals. Fields are edited
inline, element costs are priced from a catalog with per-element or global
markup, and every committed change is saved in the background.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			noColor := globalNoColor || !isatty.IsTerminal(os.Stdout.Fd())
			cli.SetGlobalFlags(globalQuiet, noColor, globalYes)
			format, _ := cmd.Flags().GetString("output")
			return cli.ValidateOutputFormat(format)
		},
		PreRunE: projectPreRun,
		RunE:    runEdit,
	}

	root.PersistentFlags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	root.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "Suppress informational output")
	root.PersistentFlags().BoolVar(&globalNoColor, "no-color", false, "Disable symbols in messages")
	root.PersistentFlags().BoolVarP(&globalYes, "yes", "y", false, "Answer yes to confirmations")
	addEditFlags(root)

	root.AddCommand(
		NewInitCommand(),
		NewEditCommand(),
		NewShowCommand(),
		NewListCommand(),
		NewCatalogCommand(),
		NewLintCommand(),
		NewClipboardCommand(),
		NewSyncCommand(),
		NewVersionCommand(version),
	)
	return root
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		return string(cli.FormatText)
	}
	return format
}

func projectPreRun(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	return ctx.ValidateProject()
}
