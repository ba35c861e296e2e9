package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/proposal-cli/pkg/document"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ErrNoTextForm is returned when text output is requested for a value that
// cannot render itself
var ErrNoTextForm = errors.New("no text form")

// TextWriter is implemented by command results with a plain-text rendering
type TextWriter interface {
	WriteText(w io.Writer) error
}

// TableFormatter writes aligned columns with a rule under each header
type TableFormatter struct {
	writer *tabwriter.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	return &TableFormatter{writer: tw}
}

// Header writes the column names and a rule as wide as each name
func (t *TableFormatter) Header(columns ...string) {
	rules := make([]string, len(columns))
	for i, c := range columns {
		rules[i] = strings.Repeat("-", len([]rune(c)))
	}
	fmt.Fprintln(t.writer, strings.Join(columns, "\t"))
	fmt.Fprintln(t.writer, strings.Join(rules, "\t"))
}

// Row writes a table row
func (t *TableFormatter) Row(values ...string) {
	fmt.Fprintln(t.writer, strings.Join(values, "\t"))
}

// Flush writes the buffered table to output
func (t *TableFormatter) Flush() error {
	return t.writer.Flush()
}

// OutputResults writes data as JSON, YAML, or its own text form
func OutputResults(w io.Writer, format string, data interface{}) error {
	switch OutputFormat(format) {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)

	case FormatYAML:
		yamlData, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(yamlData)
		return err

	case FormatText:
		tw, ok := data.(TextWriter)
		if !ok {
			return fmt.Errorf("%w: %T", ErrNoTextForm, data)
		}
		return tw.WriteText(w)

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteText prints the priced proposal and, with records enabled, the ids of
// its stored records
func (r *ProposalReport) WriteText(w io.Writer) error {
	if _, err := io.WriteString(w, document.Text(r.Proposal, r.Summary)); err != nil {
		return err
	}
	if !r.WithRecords {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Records")
	if len(r.Proposal.RemoteIDs) == 0 {
		fmt.Fprintln(w, "-------")
		fmt.Fprintln(w, "(not synced)")
		return nil
	}
	keys := make([]string, 0, len(r.Proposal.RemoteIDs))
	for key := range r.Proposal.RemoteIDs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := NewTableFormatter(w)
	table.Header("RECORD", "ID")
	for _, key := range keys {
		table.Row(key, r.Proposal.RemoteIDs[key])
	}
	return table.Flush()
}

// TruncateString truncates a string to the specified length in runes
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
