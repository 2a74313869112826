package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/mvp-joe/graphport/internal/neo4j"
	"github.com/spf13/cobra"
)

var (
	manifestFlag    string
	skipScriptsFlag bool
	scriptsOnlyFlag bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk import the materialized files into Neo4j",
	Long: `Import loads the files of the last successful materialization into the
configured database with 'neo4j-admin database import full', replacing its
contents. The file list comes from the run manifest.

After the import the constraint script and the trigger script are applied
with cypher-shell. The trigger script needs APOC triggers enabled, see
'graphport neo4j configure'.

The database must be stopped for the bulk import and started again before
the scripts are applied. Use --skip-scripts and --scripts-only to split the
two steps around a restart.

Examples:
  # Import and apply scripts
  graphport import

  # Import only, then apply scripts after restarting the server
  graphport import --skip-scripts
  graphport import --scripts-only
`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&manifestFlag, "manifest", "", "Run manifest to import (default from config)")
	importCmd.Flags().BoolVar(&skipScriptsFlag, "skip-scripts", false, "Do not apply the constraint and trigger scripts")
	importCmd.Flags().BoolVar(&scriptsOnlyFlag, "scripts-only", false, "Apply the scripts without importing")
}

func runImport(cmd *cobra.Command, args []string) error {
	if skipScriptsFlag && scriptsOnlyFlag {
		return errors.New("--skip-scripts and --scripts-only are mutually exclusive")
	}

	ctx, cancel := signalContext("import")
	defer cancel()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	manifestPath := manifestFlag
	if manifestPath == "" {
		manifestPath = cfg.ToMaterializeConfig(rootDir).ManifestFile
	}
	if manifestPath == "" {
		return errors.New("no manifest configured: set paths.manifest_file or pass --manifest")
	}

	manifest, err := materialize.ReadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest (run 'graphport materialize' first): %w", err)
	}

	ncfg := cfg.ToNeo4jConfig()

	if !scriptsOnlyFlag {
		if !quietFlag {
			log.Printf("Importing %d node files and %d relationship files from run %s\n",
				len(manifest.Nodes), len(manifest.Relationships), manifest.RunID)
		}
		out, err := neo4j.NewAdmin(ncfg).Import(ctx, manifest.NodeFiles(), manifest.RelationshipFiles())
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		if verbose && !quietFlag {
			fmt.Fprint(cmd.OutOrStdout(), out.Stdout)
		}
		printf(cmd, "✓ Imported into %s in %.1fs\n", ncfg.Database, out.Duration.Seconds())
	}

	if skipScriptsFlag {
		return nil
	}

	scripts := []string{manifest.ConstraintScript, manifest.TriggerScript}
	if err := neo4j.ApplyScripts(ctx, neo4j.NewShell(ncfg), scripts...); err != nil {
		return err
	}
	printf(cmd, "✓ Applied %s and %s\n", manifest.ConstraintScript, manifest.TriggerScript)
	return nil
}
