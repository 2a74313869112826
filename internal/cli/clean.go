package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/graphport/internal/layout"
	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated import files",
	Long: `Clean deletes the generated node and relationship files from the import
directory together with the run manifest. Other files in the directory and
the scripts directory are preserved.

Every materialization cleans the import directory itself; use this command
to reclaim space after an import.

Examples:
  # Clean the import directory
  graphport clean

  # Clean with minimal output
  graphport clean --quiet
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}
	mcfg := cfg.ToMaterializeConfig(rootDir)

	if _, err := os.Stat(mcfg.ImportDir); os.IsNotExist(err) {
		printf(cmd, "No import directory found at %s\n", mcfg.ImportDir)
		return nil
	}

	lock, err := layout.LockDir(mcfg.ImportDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	removed, err := layout.Clean(mcfg.ImportDir)
	if err != nil {
		return fmt.Errorf("failed to clean import directory: %w", err)
	}

	if err := materialize.RemoveManifest(mcfg.ManifestFile); err != nil {
		return err
	}

	if removed > 0 {
		printf(cmd, "✓ Removed %d files from %s\n", removed, mcfg.ImportDir)
	} else {
		printf(cmd, "Nothing to clean in %s\n", mcfg.ImportDir)
	}
	return nil
}
