package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/proposal-cli/pkg/models"
)

const (
	ProjectDir      = ".proposal"
	ProposalsDir    = "proposals"
	RecordsDir      = "records"
	SettingsFile    = "settings.yaml"
	CatalogFile     = "catalog.yaml"
	LogFile         = "proposal.log"
	DefaultProposal = "proposal"
)

var (
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrInvalidProposalName = errors.New("proposal name may only contain letters, digits, '-' and '_'")
)

func InitProjectStructure() error {
	dirs := []string{
		ProjectDir,
		filepath.Join(ProjectDir, ProposalsDir),
		filepath.Join(ProjectDir, RecordsDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ProjectExists reports whether the current directory holds a project
func ProjectExists() bool {
	info, err := os.Stat(ProjectDir)
	return err == nil && info.IsDir()
}

// ReadSettings loads settings.yaml over the defaults. A missing file yields
// the defaults.
func ReadSettings() (*models.Settings, error) {
	settings := models.DefaultSettings()

	content, err := os.ReadFile(filepath.Join(ProjectDir, SettingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(content, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

func WriteSettings(settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	content, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	return writeAtomic(filepath.Join(ProjectDir, SettingsFile), content)
}

func ValidateProposalName(name string) error {
	if name == "" || strings.Trim(name, "-_") == "" {
		return ErrInvalidProposalName
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return ErrInvalidProposalName
		}
	}
	return nil
}

func proposalPath(name string) string {
	return filepath.Join(ProjectDir, ProposalsDir, name+".yaml")
}

func ReadProposal(name string) (*models.Proposal, error) {
	if err := ValidateProposalName(name); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(proposalPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, name)
		}
		return nil, fmt.Errorf("failed to read proposal %s: %w", name, err)
	}

	var proposal models.Proposal
	if err := yaml.Unmarshal(content, &proposal); err != nil {
		return nil, fmt.Errorf("failed to parse proposal YAML %s: %w", name, err)
	}

	return &proposal, nil
}

func WriteProposal(name string, proposal *models.Proposal) error {
	if err := ValidateProposalName(name); err != nil {
		return err
	}

	content, err := yaml.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("failed to marshal proposal to YAML: %w", err)
	}

	if err := writeAtomic(proposalPath(name), content); err != nil {
		return fmt.Errorf("failed to write proposal %s: %w", name, err)
	}
	return nil
}

func ListProposals() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(ProjectDir, ProposalsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}

	return names, nil
}

// writeAtomic writes to a temp file and renames it over path
func writeAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
