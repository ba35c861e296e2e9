package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
	"github.com/pluqqy/proposal-cli/pkg/search"
)

var catalogFilter string

// NewCatalogCommand creates the catalog command
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [modules|elements|parameters]",
		Short: "List the modules, elements and parameters proposals are priced from",
		Long: `List the project catalog. With no argument every section is printed.

Examples:
  # Everything
  proposal catalog

  # Only the parameters formulas can reference
  proposal catalog parameters

  # YAML, ready to edit into .proposal/catalog.yaml
  proposal catalog -o yaml

  # Search: fields name:, unit:, kind:, type:, cost:>n with AND, OR, NOT
  proposal catalog --filter "type:element unit:sqft"
  proposal catalog --filter "cost:>100 OR name:vanity"`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"modules", "elements", "parameters"},
		PreRunE:   projectPreRun,
		RunE:      runCatalog,
	}

	cmd.Flags().StringVarP(&catalogFilter, "filter", "f", "", "Only show entries matching a search query")
	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	section := ""
	if len(args) > 0 {
		section = args[0]
		if !cli.Contains(cmd.ValidArgs, section) {
			return fmt.Errorf("unknown catalog section %q (use modules, elements or parameters)", section)
		}
	}

	cc, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	reg, err := cc.OpenCatalog()
	if err != nil {
		return err
	}
	c := reg.Catalog()
	format := outputFormat(cmd)

	if catalogFilter != "" {
		return runCatalogSearch(cmd, c, section, format)
	}

	if format != string(cli.FormatText) {
		var data interface{} = c
		switch section {
		case "modules":
			data = c.Modules
		case "elements":
			data = c.Elements
		case "parameters":
			data = c.Parameters
		}
		return cli.OutputResults(cmd.OutOrStdout(), format, data)
	}

	out := cmd.OutOrStdout()
	first := true
	heading := func(title string) {
		if !first {
			fmt.Fprintln(out)
		}
		first = false
		fmt.Fprintln(out, title)
	}

	if section == "" || section == "modules" {
		heading("Modules")
		table := cli.NewTableFormatter(out)
		table.Header("ID", "NAME")
		for _, m := range c.Modules {
			table.Row(strconv.Itoa(m.ID), m.Name)
		}
		table.Flush()
	}

	if section == "" || section == "elements" {
		heading("Elements")
		table := cli.NewTableFormatter(out)
		table.Header("ID", "NAME", "UNIT", "MATERIAL", "LABOR", "MARKUP")
		for _, el := range c.Elements {
			table.Row(
				strconv.Itoa(el.ID),
				el.Name,
				el.Unit,
				pricing.FormatMoney(el.MaterialCost),
				pricing.FormatMoney(el.LaborCost),
				pricing.FormatPercent(el.DefaultMarkup),
			)
		}
		table.Flush()
	}

	if section == "" || section == "parameters" {
		heading("Parameters")
		table := cli.NewTableFormatter(out)
		table.Header("ID", "NAME", "KIND", "VALUE")
		for _, p := range c.Parameters {
			table.Row(strconv.Itoa(p.ID), p.Name, string(p.Kind), parameterValue(p))
		}
		table.Flush()
	}
	return nil
}

func parameterValue(p models.Parameter) string {
	if p.Kind == models.ParameterKindText {
		return p.Text
	}
	return strconv.FormatFloat(p.Number, 'f', -1, 64)
}

// runCatalogSearch prints the entries matching --filter, best match first
func runCatalogSearch(cmd *cobra.Command, c models.Catalog, section, format string) error {
	results, err := search.NewEngine(c).Search(catalogFilter)
	if err != nil {
		return err
	}
	if section != "" {
		typ := search.ItemType(strings.TrimSuffix(section, "s"))
		kept := results[:0]
		for _, r := range results {
			if r.Item.Type == typ {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	if format != string(cli.FormatText) {
		if results == nil {
			results = []search.Result{}
		}
		return cli.OutputResults(cmd.OutOrStdout(), format, results)
	}

	if len(results) == 0 {
		cli.PrintInfo("Nothing in the catalog matches %q", catalogFilter)
		return nil
	}
	table := cli.NewTableFormatter(cmd.OutOrStdout())
	table.Header("TYPE", "ID", "NAME", "DETAIL")
	for _, r := range results {
		detail := r.Item.Kind
		if r.Item.Type == search.ItemTypeElement {
			detail = pricing.FormatMoney(r.Item.Cost)
			if r.Item.Unit != "" {
				detail += " per " + r.Item.Unit
			}
		}
		table.Row(string(r.Item.Type), strconv.Itoa(r.Item.ID), r.Item.Name, detail)
	}
	table.Flush()
	return nil
}
