package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pluqqy/proposal-cli/pkg/catalog"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
)

// textWidth is the wrap width of plain-text exports
const textWidth = 72

// Summarize prices a stored proposal without opening it for editing
func Summarize(p *models.Proposal, reg *catalog.Registry, logger *slog.Logger) (pricing.Summary, error) {
	engine := pricing.NewEngine(logger)
	if err := engine.Load(p.Elements, p.GlobalMarkup); err != nil {
		return pricing.Summary{}, err
	}
	return engine.Summarize(pricing.NameLookup{
		Module:  reg.ModuleName,
		Element: reg.ElementName,
	}), nil
}

// Text renders a proposal and its pricing as plain text
func Text(p *models.Proposal, sum pricing.Summary) string {
	var b strings.Builder

	title := p.Title
	if title == "" {
		title = "Untitled proposal"
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n")

	if c := p.Client; c != (models.ClientInfo{}) {
		b.WriteString("\nPrepared for\n")
		for _, line := range []string{c.Name, c.Company, c.Address, c.Email, c.Phone} {
			if line != "" {
				b.WriteString(indent.String(line, 2) + "\n")
			}
		}
	}

	if p.Description != "" {
		b.WriteString("\n" + wordwrap.String(p.Description, textWidth) + "\n")
	}

	b.WriteString("\n" + SummaryText(sum))

	for _, term := range p.Terms {
		if term.Title == "" && term.Body == "" {
			continue
		}
		b.WriteString("\n" + term.Title + "\n")
		if term.Body != "" {
			b.WriteString(indent.String(wordwrap.String(term.Body, textWidth-2), 2) + "\n")
		}
	}

	if p.ServiceAgreement != "" {
		b.WriteString("\nService agreement\n")
		b.WriteString(wordwrap.String(p.ServiceAgreement, textWidth) + "\n")
	}

	return b.String()
}

// SummaryText renders the pricing table of a summary
func SummaryText(sum pricing.Summary) string {
	var b strings.Builder
	b.WriteString("Pricing\n")
	if sum.Override.Enabled {
		fmt.Fprintf(&b, "  Global markup %s applied to every element\n", pricing.FormatPercent(sum.Override.Value))
	}
	if len(sum.Modules) == 0 {
		b.WriteString("  No elements\n")
	}
	for _, m := range sum.Modules {
		fmt.Fprintf(&b, "  %-40s %14s\n", m.Module, pricing.FormatMoney(m.Total))
		for _, line := range m.Lines {
			name := fmt.Sprintf("%s (+%s)", line.Element, pricing.FormatPercent(line.Markup))
			fmt.Fprintf(&b, "    %-38s %14s\n", name, pricing.FormatMoney(line.Total))
		}
	}
	fmt.Fprintf(&b, "  %-40s %14s\n", "Total", pricing.FormatMoney(sum.GrandTotal))
	return b.String()
}
