package commands

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/document"
)

var clipboardSummaryOnly bool

// NewClipboardCommand creates the clipboard command
func NewClipboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clipboard [proposal]",
		Aliases: []string{"copy", "clip"},
		Short:   "Copy a proposal as plain text to the clipboard",
		Long: `Copy the text rendering of a proposal to the system clipboard.

Examples:
  # Copy the default proposal
  proposal clipboard

  # Copy only the pricing table
  proposal copy smith-kitchen --summary`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: projectPreRun,
		RunE:    runClipboard,
	}

	cmd.Flags().BoolVar(&clipboardSummaryOnly, "summary", false, "Copy only the pricing summary")
	return cmd
}

func runClipboard(cmd *cobra.Command, args []string) error {
	name, err := cli.ValidateProposalArg(args)
	if err != nil {
		return err
	}
	cc, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	report, err := cc.Report(name)
	if err != nil {
		return err
	}

	text := document.Text(report.Proposal, report.Summary)
	if clipboardSummaryOnly {
		text = document.SummaryText(report.Summary)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	cli.PrintSuccess("Copied %s to clipboard (%d characters)", name, len(text))
	return nil
}
