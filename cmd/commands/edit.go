package commands

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/tui"
)

var (
	editMetricsFile string
	editDebug       bool
)

// NewEditCommand creates the edit command
func NewEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [proposal]",
		Short: "Open a proposal in the interactive editor",
		Long: `Open a proposal in the terminal editor. A proposal that does not exist yet is
created. Logs go to .proposal/proposal.log.

Examples:
  # Edit the default proposal
  proposal edit

  # Edit a named proposal
  proposal edit smith-kitchen

  # Keep autosave metrics for inspection
  proposal edit smith-kitchen --metrics-file autosave.prom`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: projectPreRun,
		RunE:    runEdit,
	}
	addEditFlags(cmd)
	return cmd
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&editMetricsFile, "metrics-file", "", "Write autosave metrics to this file on exit")
	cmd.Flags().BoolVar(&editDebug, "debug", false, "Log debug messages")
}

func runEdit(cmd *cobra.Command, args []string) error {
	name, err := cli.ValidateProposalArg(args)
	if err != nil {
		return err
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("the editor needs a terminal; use 'proposal show' or 'proposal sync' in scripts")
	}

	cc, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if editDebug {
		level = slog.LevelDebug
	}
	if err := cc.OpenLog(level); err != nil {
		return err
	}
	defer cc.Close()

	s, err := openSession(cmd.Context(), cc, name)
	if err != nil {
		return err
	}
	defer s.Close()
	cc.Logger.Info("editing proposal", "name", name, "new", s.created)

	app := tui.NewApp(s.doc, cc.Logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", err)
	}

	if err := s.save(); err != nil {
		return err
	}
	if n := len(s.doc.Sync().Failed()); n > 0 {
		cli.PrintWarning("%d record(s) were not saved to the store; run 'proposal sync %s' to retry", n, name)
	}
	return s.writeMetrics(editMetricsFile)
}
