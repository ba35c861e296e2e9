package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pluqqy/proposal-cli/pkg/catalog"
	"github.com/pluqqy/proposal-cli/pkg/document"
	"github.com/pluqqy/proposal-cli/pkg/files"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
	"github.com/pluqqy/proposal-cli/pkg/store"
)

// CommandContext manages project validation and the shared pieces commands
// open: settings, catalog, record store and log
type CommandContext struct {
	ProjectPath string
	Settings    *models.Settings
	Logger      *slog.Logger
	validated   bool

	logFile *os.File
}

// NewCommandContext creates a new command context
func NewCommandContext() (*CommandContext, error) {
	return &CommandContext{
		ProjectPath: files.ProjectDir,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// ValidateProject ensures the project is initialized
func (c *CommandContext) ValidateProject() error {
	if c.validated {
		return nil
	}

	if _, err := os.Stat(c.ProjectPath); os.IsNotExist(err) {
		return fmt.Errorf("no %s directory found. Run 'proposal init' first", files.ProjectDir)
	}

	c.validated = true
	return nil
}

// LoadSettings reads the project settings. Invalid settings are an error;
// a missing file gives the defaults.
func (c *CommandContext) LoadSettings() (*models.Settings, error) {
	if c.Settings != nil {
		return c.Settings, nil
	}
	settings, err := files.ReadSettings()
	if err != nil {
		return nil, err
	}
	c.Settings = settings
	return settings, nil
}

// LoadSettingsWithDefault loads settings or returns default if error
func (c *CommandContext) LoadSettingsWithDefault() *models.Settings {
	settings, err := c.LoadSettings()
	if err != nil {
		c.Logger.Warn("using default settings", "error", err)
		settings = models.DefaultSettings()
		c.Settings = settings
	}
	return settings
}

// OpenLog routes the context logger to the project log file. The TUI owns
// the terminal, so nothing is logged to stderr while it runs.
func (c *CommandContext) OpenLog(level slog.Level) error {
	path := filepath.Join(c.ProjectPath, files.LogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	c.logFile = f
	c.Logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// Close releases the log file
func (c *CommandContext) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

// OpenCatalog loads the project catalog
func (c *CommandContext) OpenCatalog() (*catalog.Registry, error) {
	return catalog.Open(filepath.Join(c.ProjectPath, files.CatalogFile))
}

// OpenStore opens the record store named in settings
func (c *CommandContext) OpenStore(ctx context.Context) (store.Store, error) {
	settings := c.LoadSettingsWithDefault()
	rs, err := store.Open(ctx, settings.Store, c.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", settings.Store.Backend, err)
	}
	return rs, nil
}

// LoadProposal reads a proposal by name. A missing proposal is returned as
// nil when allowMissing is set, so callers can start a new one.
func (c *CommandContext) LoadProposal(name string, allowMissing bool) (*models.Proposal, error) {
	if err := files.ValidateProposalName(name); err != nil {
		return nil, err
	}
	p, err := files.ReadProposal(name)
	if err != nil {
		if allowMissing && errors.Is(err, files.ErrProposalNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ProposalReport is the structured form of a priced proposal
type ProposalReport struct {
	Name     string           `json:"name" yaml:"name"`
	Proposal *models.Proposal `json:"proposal" yaml:"proposal"`
	Summary  pricing.Summary  `json:"summary" yaml:"summary"`

	// WithRecords adds the stored record ids to the text form
	WithRecords bool `json:"-" yaml:"-"`
}

// Report prices a stored proposal against the project catalog
func (c *CommandContext) Report(name string) (*ProposalReport, error) {
	p, err := c.LoadProposal(name, false)
	if err != nil {
		return nil, err
	}
	reg, err := c.OpenCatalog()
	if err != nil {
		return nil, err
	}
	sum, err := document.Summarize(p, reg, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to price proposal %q: %w", name, err)
	}
	return &ProposalReport{Name: name, Proposal: p, Summary: sum}, nil
}
