package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/files"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
)

// ListItem is one proposal in the list output
type ListItem struct {
	Name     string  `json:"name" yaml:"name"`
	Title    string  `json:"title" yaml:"title"`
	Client   string  `json:"client" yaml:"client"`
	Elements int     `json:"elements" yaml:"elements"`
	Total    float64 `json:"total" yaml:"total"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// ListResult is the structured output of the list command
type ListResult struct {
	Proposals []ListItem `json:"proposals" yaml:"proposals"`
}

// WriteText prints the proposals as a table
func (r ListResult) WriteText(w io.Writer) error {
	table := cli.NewTableFormatter(w)
	table.Header("NAME", "TITLE", "CLIENT", "ELEMENTS", "TOTAL")
	for _, item := range r.Proposals {
		if item.Error != "" {
			table.Row(item.Name, "(unreadable)", cli.TruncateString(item.Error, 40), "", "")
			continue
		}
		table.Row(
			item.Name,
			cli.TruncateString(item.Title, 30),
			cli.TruncateString(item.Client, 24),
			strconv.Itoa(item.Elements),
			pricing.FormatMoney(item.Total),
		)
	}
	return table.Flush()
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals in the project",
		Long: `List every proposal in the project with its client and priced total.

Examples:
  # Table output
  proposal list

  # JSON output
  proposal list -o json`,
		Args:    cobra.NoArgs,
		PreRunE: projectPreRun,
		RunE:    runList,
	}
}

const listWorkers = 4

func runList(cmd *cobra.Command, args []string) error {
	cc, err := cli.NewCommandContext()
	if err != nil {
		return err
	}

	names, err := files.ListProposals()
	if err != nil {
		return fmt.Errorf("failed to list proposals: %w", err)
	}

	// each proposal is read and priced on its own; items keep list order
	result := ListResult{Proposals: make([]ListItem, len(names))}
	var g errgroup.Group
	g.SetLimit(listWorkers)
	for i, name := range names {
		g.Go(func() error {
			result.Proposals[i] = listItem(cc, name)
			return nil
		})
	}
	_ = g.Wait()

	format := outputFormat(cmd)
	if format == string(cli.FormatText) && len(result.Proposals) == 0 {
		cli.PrintInfo("No proposals yet. Run 'proposal edit <name>' to create one")
		return nil
	}
	return cli.OutputResults(cmd.OutOrStdout(), format, result)
}

func listItem(cc *cli.CommandContext, name string) ListItem {
	item := ListItem{Name: name}
	report, err := cc.Report(name)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	p := report.Proposal
	item.Title = p.Title
	item.Client = p.Client.Name
	if item.Client == "" {
		item.Client = p.Client.Company
	}
	item.Elements = len(p.Elements)
	item.Total = report.Summary.GrandTotal
	return item
}
