package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/autosave"
	"github.com/pluqqy/proposal-cli/pkg/files"
)

var (
	syncMetricsFile string
	syncVerbose     bool
	syncRebuild     bool
)

// SyncResult is the structured output of the sync command
type SyncResult struct {
	Proposal string       `json:"proposal" yaml:"proposal"`
	Records  []SyncRecord `json:"records" yaml:"records"`
	Failed   int          `json:"failed" yaml:"failed"`
}

// SyncRecord is the outcome for one record
type SyncRecord struct {
	Record   string `json:"record" yaml:"record"`
	Status   string `json:"status" yaml:"status"`
	RemoteID string `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// WriteText prints one line per record that was sent
func (r SyncResult) WriteText(w io.Writer) error {
	if len(r.Records) == 0 {
		_, err := fmt.Fprintf(w, "%s is up to date\n", r.Proposal)
		return err
	}
	table := cli.NewTableFormatter(w)
	table.Header("RECORD", "STATUS", "ID", "ERROR")
	for _, rec := range r.Records {
		table.Row(rec.Record, rec.Status, rec.RemoteID, rec.Error)
	}
	return table.Flush()
}

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [proposal]",
		Short: "Write a proposal's pending changes to the record store",
		Long: `Compare a proposal with the record store and write what differs, without
opening the editor. Records that already match are not written.

Examples:
  # Sync the default proposal
  proposal sync

  # Sync after a failed save, with details
  proposal sync smith-kitchen -o yaml

  # Forget stored record ids and create every record again, e.g. after
  # switching the store backend
  proposal sync smith-kitchen --rebuild`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: projectPreRun,
		RunE:    runSync,
	}

	cmd.Flags().StringVar(&syncMetricsFile, "metrics-file", "", "Write autosave metrics to this file")
	cmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Log each record to stderr")
	cmd.Flags().BoolVar(&syncRebuild, "rebuild", false, "Forget stored record ids and recreate every record")
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	name, err := cli.ValidateProposalArg(args)
	if err != nil {
		return err
	}
	cc, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	if syncVerbose {
		cc.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if syncRebuild {
		if err := forgetRemoteIDs(cc, name); err != nil {
			return err
		}
	}

	s, err := openSession(cmd.Context(), cc, name)
	if err != nil {
		return err
	}
	defer s.Close()

	statuses := s.settle(cc.Logger)
	if err := s.save(); err != nil {
		return err
	}
	if err := s.writeMetrics(syncMetricsFile); err != nil {
		return err
	}

	result := SyncResult{Proposal: name}
	for _, st := range statuses {
		rec := SyncRecord{Record: st.Key, Status: st.Status.String(), RemoteID: st.RemoteID}
		if st.Err != nil {
			rec.Error = st.Err.Error()
		}
		if st.Status == autosave.StatusFailed {
			result.Failed++
		}
		result.Records = append(result.Records, rec)
	}
	sort.Slice(result.Records, func(i, j int) bool { return result.Records[i].Record < result.Records[j].Record })

	if err := cli.OutputResults(cmd.OutOrStdout(), outputFormat(cmd), result); err != nil {
		return err
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d record(s) failed to sync", result.Failed)
	}
	return nil
}

func forgetRemoteIDs(cc *cli.CommandContext, name string) error {
	p, err := cc.LoadProposal(name, false)
	if err != nil {
		return err
	}
	if len(p.RemoteIDs) == 0 {
		return nil
	}
	ok, err := cli.Confirm(fmt.Sprintf("Forget %d stored record id(s) of %s and create them again?", len(p.RemoteIDs), name), false)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rebuild cancelled")
	}
	p.RemoteIDs = nil
	return files.WriteProposal(name, p)
}
