package commands

import (
	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
)

var showMetadata bool

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [proposal]",
		Short: "Print a priced proposal",
		Long: `Print a proposal with its pricing summary.

Examples:
  # Show the default proposal as text
  proposal show

  # Show as JSON
  proposal show smith-kitchen -o json

  # Include the ids of the stored records
  proposal show smith-kitchen --metadata`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: projectPreRun,
		RunE:    runShow,
	}

	cmd.Flags().BoolVar(&showMetadata, "metadata", false, "Show record store ids")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	if !showMetadata {
		report.Proposal.RemoteIDs = nil
	}
	report.WithRecords = showMetadata
	return cli.OutputResults(cmd.OutOrStdout(), outputFormat(cmd), report)
}
