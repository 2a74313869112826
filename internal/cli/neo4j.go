package cli

import (
	"fmt"

	"github.com/mvp-joe/graphport/internal/neo4j"
	"github.com/spf13/cobra"
)

var recoverFileFlag string

// neo4jCmd groups the database maintenance commands
var neo4jCmd = &cobra.Command{
	Use:   "neo4j",
	Short: "Prepare and maintain the destination database",
}

// neo4jConfigureCmd represents the neo4j configure command
var neo4jConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Enable the APOC settings the generated scripts need",
	Long: `Configure asks the running server for its home and import directories and
writes <home>/conf/apoc.conf enabling APOC triggers, file import and file
export. Restart the server afterwards.

The command must run on the database host.
`,
	RunE: runNeo4jConfigure,
}

// neo4jRecoverCmd represents the neo4j recover command
var neo4jRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Reset the database with an empty bulk import",
	Long: `Recover writes a node file without rows and imports it with
'neo4j-admin database import full', replacing the database with an empty
one. Use it when a failed import left the database inconsistent.

The database must be stopped.
`,
	RunE: runNeo4jRecover,
}

func init() {
	rootCmd.AddCommand(neo4jCmd)
	neo4jCmd.AddCommand(neo4jConfigureCmd)
	neo4jCmd.AddCommand(neo4jRecoverCmd)
	neo4jRecoverCmd.Flags().StringVar(&recoverFileFlag, "file", "", "Recovery node file (default <import_dir>/RECOVERY.csv)")
}

func runNeo4jConfigure(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext("configuration")
	defer cancel()

	_, cfg, err := loadProject()
	if err != nil {
		return err
	}

	dirs, path, err := neo4j.Configure(ctx, neo4j.NewShell(cfg.ToNeo4jConfig()))
	if err != nil {
		return fmt.Errorf("failed to configure APOC: %w", err)
	}

	printf(cmd, "✓ Wrote %s\n", path)
	printf(cmd, "  Server home:      %s\n", dirs.Home)
	if dirs.Import != "" {
		printf(cmd, "  Import directory: %s\n", dirs.Import)
	}
	printf(cmd, "Restart the server to apply the new settings\n")
	return nil
}

func runNeo4jRecover(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext("recovery")
	defer cancel()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	path := recoverFileFlag
	if path == "" {
		path = cfg.ToMaterializeConfig(rootDir).Layout().RecoveryFile()
	}

	ncfg := cfg.ToNeo4jConfig()
	out, err := neo4j.NewAdmin(ncfg).Recover(ctx, path)
	if err != nil {
		return fmt.Errorf("recovery failed: %w", err)
	}

	printf(cmd, "✓ Reset %s with an empty import in %.1fs\n", ncfg.Database, out.Duration.Seconds())
	return nil
}
