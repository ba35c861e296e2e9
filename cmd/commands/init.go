package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/catalog"
	"github.com/pluqqy/proposal-cli/pkg/files"
	"github.com/pluqqy/proposal-cli/pkg/models"
)

var initEmptyCatalog bool

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new proposal project",
		Long: `Creates the .proposal folder structure in the current directory, a default
settings.yaml and a starter catalog. Existing files are left alone.

Examples:
  # Start a project with the sample catalog
  proposal init

  # Start with an empty catalog
  proposal init --empty`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVar(&initEmptyCatalog, "empty", false, "Create an empty catalog instead of the sample")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine current directory: %w", err)
	}
	if files.ProjectExists() {
		cli.PrintInfo("Project already initialized in %s; adding anything missing", cwd)
	} else {
		cli.PrintInfo("Initializing proposal project in %s...", cwd)
	}

	if err := files.InitProjectStructure(); err != nil {
		return fmt.Errorf("failed to initialize project structure: %w", err)
	}
	cli.PrintSuccess("Created %s folder structure", files.ProjectDir)

	settingsPath := filepath.Join(files.ProjectDir, files.SettingsFile)
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := files.WriteSettings(models.DefaultSettings()); err != nil {
			return err
		}
		cli.PrintSuccess("Wrote default settings")
	}

	catalogPath := filepath.Join(files.ProjectDir, files.CatalogFile)
	if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
		c := catalog.Sample()
		if initEmptyCatalog {
			c = models.Catalog{}
		}
		reg, err := catalog.FromCatalog(c)
		if err != nil {
			return err
		}
		if err := reg.SaveTo(catalogPath); err != nil {
			return err
		}
		cli.PrintSuccess("Wrote catalog to %s", catalogPath)
	}

	cli.PrintInfo("Run 'proposal' to start editing.")
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proposal version %s\n", version)
		},
	}
}
