package cli

import (
	"fmt"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/spf13/cobra"
)

var (
	joinStrategyFlag string
	workersFlag      int
	noManifestFlag   bool
)

// materializeCmd represents the materialize command
var materializeCmd = &cobra.Command{
	Use:     "materialize",
	Aliases: []string{"run"},
	Short:   "Write the node and relationship files of a bulk import",
	Long: `Materialize runs the full pipeline:

  1. Compile the schema description, clean the import directory and write
     header-only node and relationship files, the constraint and trigger
     scripts, and the foreign-key descriptor file.
  2. Append one row per raw table row to each node file.
  3. Join the raw tables along each foreign key and append one row per
     matching pair to each relationship file.

A successful run writes a manifest that 'graphport import' consumes.

Examples:
  # Materialize with the project configuration
  graphport materialize

  # Join through an in-memory SQLite database, four node files at a time
  graphport materialize --join-strategy sqlite --workers 4
`,
	RunE: runMaterialize,
}

func init() {
	rootCmd.AddCommand(materializeCmd)
	materializeCmd.Flags().StringVar(&joinStrategyFlag, "join-strategy", "", "Join strategy: hash or sqlite (overrides config)")
	materializeCmd.Flags().IntVar(&workersFlag, "workers", 0, "Node files written in parallel (overrides config)")
	materializeCmd.Flags().BoolVar(&noManifestFlag, "no-manifest", false, "Do not write the run manifest")
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext("materialization")
	defer cancel()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	mcfg := cfg.ToMaterializeConfig(rootDir)
	if joinStrategyFlag != "" {
		mcfg.JoinStrategy = joinStrategyFlag
	}
	if workersFlag > 0 {
		mcfg.Workers = workersFlag
	}
	if noManifestFlag {
		mcfg.ManifestFile = ""
	}

	orch, err := materialize.New(mcfg, NewCLIProgressReporter(quietFlag))
	if err != nil {
		return fmt.Errorf("failed to create materializer: %w", err)
	}

	res, err := orch.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("materialization cancelled")
		}
		return fmt.Errorf("materialization failed: %w", err)
	}

	if quietFlag {
		fmt.Fprintln(cmd.OutOrStdout(), res.String())
	}
	return nil
}
