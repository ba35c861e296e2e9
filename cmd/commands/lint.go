package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/formula"
)

// LintIssue is one formula problem in the lint output
type LintIssue struct {
	Element string        `json:"element" yaml:"element"`
	Module  string        `json:"module" yaml:"module"`
	Field   string        `json:"field" yaml:"field"`
	Formula string        `json:"formula" yaml:"formula"`
	Issue   formula.Issue `json:"issue" yaml:"issue"`
}

// LintIssues is the structured output of the lint command
type LintIssues []LintIssue

// WriteText prints one line per problem
func (l LintIssues) WriteText(w io.Writer) error {
	for _, li := range l {
		if _, err := fmt.Fprintf(w, "%s / %s %s: %s\n", li.Module, li.Element, li.Field, li.Issue.Message); err != nil {
			return err
		}
	}
	return nil
}

// NewLintCommand creates the lint command
func NewLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [proposal]",
		Short: "Check element formulas against the selected parameters",
		Long: `Parse every material and labor formula of a proposal and report syntax
errors and names that are not selected parameters. Exits non-zero when
anything is found.

Examples:
  proposal lint
  proposal lint smith-kitchen -o json`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: projectPreRun,
		RunE:    runLint,
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	name, err := cli.ValidateProposalArg(args)
	if err != nil {
		return err
	}
	cc, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	p, err := cc.LoadProposal(name, false)
	if err != nil {
		return err
	}
	reg, err := cc.OpenCatalog()
	if err != nil {
		return err
	}

	names := reg.SelectedNames(p.SelectedParameters)
	issues := LintIssues{}
	for _, rec := range p.Elements {
		element := fmt.Sprintf("#%d", rec.ElementID)
		if n, ok := reg.ElementName(rec.ElementID); ok {
			element = n
		}
		module := fmt.Sprintf("#%d", rec.ModuleID)
		if n, ok := reg.ModuleName(rec.ModuleID); ok {
			module = n
		}
		for _, f := range []struct{ field, text string }{
			{"formula", rec.Formula},
			{"labor_formula", rec.LaborFormula},
		} {
			for _, issue := range formula.Lint(f.text, names) {
				issues = append(issues, LintIssue{
					Element: element,
					Module:  module,
					Field:   f.field,
					Formula: f.text,
					Issue:   issue,
				})
			}
		}
	}

	format := outputFormat(cmd)
	if format == string(cli.FormatText) && len(issues) == 0 {
		cli.PrintSuccess("No formula problems in %s", name)
	} else if err := cli.OutputResults(cmd.OutOrStdout(), format, issues); err != nil {
		return err
	}

	if len(issues) > 0 {
		return fmt.Errorf("%d formula problem(s) found", len(issues))
	}
	return nil
}
