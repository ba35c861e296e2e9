package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/files"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/search"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"-q"}, args...))
	err := root.Execute()
	return out.String(), err
}

// newProject initializes a project in a temp dir holding one priced proposal
func newProject(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())

	_, err := runCommand(t, "init")
	require.NoError(t, err)

	p := &models.Proposal{
		ID:                 "p-1",
		Title:              "Kitchen remodel",
		Client:             models.ClientInfo{Name: "Dana Smith"},
		SelectedParameters: []int{1},
		Elements: []models.ElementCostRecord{{
			ElementID:    1,
			ModuleID:     1,
			Formula:      "area * 2",
			LaborFormula: "hours * 3",
			MaterialCost: 100,
			LaborCost:    50,
			Markup:       10,
		}},
	}
	require.NoError(t, files.WriteProposal("kitchen", p))
}

func TestInitCreatesProject(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runCommand(t, "init")
	require.NoError(t, err)

	for _, path := range []string{
		filepath.Join(files.ProjectDir, files.SettingsFile),
		filepath.Join(files.ProjectDir, files.CatalogFile),
		filepath.Join(files.ProjectDir, files.ProposalsDir),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	// a second init leaves existing files alone
	_, err = runCommand(t, "init")
	assert.NoError(t, err)
}

func TestCommandsRequireProject(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runCommand(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proposal init")
}

func TestShowJSON(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "show", "kitchen", "-o", "json")
	require.NoError(t, err)

	var report cli.ProposalReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "kitchen", report.Name)
	assert.Equal(t, "Kitchen remodel", report.Proposal.Title)
	assert.InDelta(t, 165.0, report.Summary.GrandTotal, 1e-9)
	require.Len(t, report.Summary.Modules, 1)
	assert.Equal(t, "Kitchen", report.Summary.Modules[0].Module)
}

func TestShowText(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "show", "kitchen")
	require.NoError(t, err)
	assert.Contains(t, out, "Kitchen remodel")
	assert.Contains(t, out, "Dana Smith")
	assert.Contains(t, out, "$165")
}

func TestShowMissingProposal(t *testing.T) {
	newProject(t)

	_, err := runCommand(t, "show", "nope")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "list", "-o", "json")
	require.NoError(t, err)

	var result ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Proposals, 1)
	item := result.Proposals[0]
	assert.Equal(t, "kitchen", item.Name)
	assert.Equal(t, "Dana Smith", item.Client)
	assert.Equal(t, 1, item.Elements)
	assert.InDelta(t, 165.0, item.Total, 1e-9)

	out, err = runCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "kitchen")
}

func TestCatalogSections(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "catalog", "parameters", "-o", "json")
	require.NoError(t, err)
	var params []models.Parameter
	require.NoError(t, json.Unmarshal([]byte(out), &params))
	assert.Len(t, params, 6)

	out, err = runCommand(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Modules")
	assert.Contains(t, out, "Base cabinets")
	assert.Contains(t, out, "laborRate")

	_, err = runCommand(t, "catalog", "widgets")
	assert.Error(t, err)
}

func TestLintReportsUnselectedNames(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "lint", "kitchen", "-o", "json")
	require.Error(t, err)

	var issues []LintIssue
	require.NoError(t, json.Unmarshal([]byte(out), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "labor_formula", issues[0].Field)
	assert.Equal(t, "hours", issues[0].Issue.Name)
	assert.Equal(t, "Base cabinets", issues[0].Element)
}

func TestSyncSendsOnlyChanges(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "sync", "kitchen", "-o", "json")
	require.NoError(t, err)

	var first SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Zero(t, first.Failed)
	var synced []string
	for _, rec := range first.Records {
		synced = append(synced, rec.Record)
		assert.Equal(t, "committed", rec.Status, rec.Record)
		assert.NotEmpty(t, rec.RemoteID, rec.Record)
	}
	assert.Contains(t, synced, "proposal")
	assert.Contains(t, synced, "client")
	assert.Contains(t, synced, "element/1:1")
	assert.NotContains(t, synced, "agreement", "empty records are not created")

	p, err := files.ReadProposal("kitchen")
	require.NoError(t, err)
	assert.NotEmpty(t, p.RemoteIDs["proposal"])
	assert.NotEmpty(t, p.RemoteIDs["element/1:1"])

	out, err = runCommand(t, "sync", "kitchen", "-o", "json")
	require.NoError(t, err)
	var second SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Empty(t, second.Records)

	out, err = runCommand(t, "sync", "kitchen")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "up to date"), out)
}

func TestSyncWritesMetrics(t *testing.T) {
	newProject(t)

	_, err := runCommand(t, "sync", "kitchen", "--metrics-file", "autosave.prom")
	require.NoError(t, err)

	content, err := os.ReadFile("autosave.prom")
	require.NoError(t, err)
	assert.Contains(t, string(content), "proposal_autosave")
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "proposal version test\n", out)
}

func TestCatalogFilter(t *testing.T) {
	newProject(t)

	out, err := runCommand(t, "catalog", "elements", "--filter", "tile", "-o", "json")
	require.NoError(t, err)

	var results []search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Tile flooring", results[0].Item.Name)

	_, err = runCommand(t, "catalog", "--filter", "color:red")
	assert.Error(t, err)
}

func TestSyncRebuildRecreatesRecords(t *testing.T) {
	newProject(t)

	_, err := runCommand(t, "sync", "kitchen")
	require.NoError(t, err)
	before, err := files.ReadProposal("kitchen")
	require.NoError(t, err)

	out, err := runCommand(t, "sync", "kitchen", "--rebuild", "-y", "-o", "json")
	require.NoError(t, err)
	var result SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.Records)

	after, err := files.ReadProposal("kitchen")
	require.NoError(t, err)
	assert.NotEqual(t, before.RemoteIDs["proposal"], after.RemoteIDs["proposal"])
}
