package cli

import (
	"fmt"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/spf13/cobra"
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the schema and write headers and scripts only",
	Long: `Compile runs only the first stage of a materialization. It cleans the
import directory, then writes header-only node and relationship files, the
constraint and trigger scripts, and the foreign-key descriptor file.

Compiling the same schema twice produces identical files.
`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext("compilation")
	defer cancel()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	orch, err := materialize.New(cfg.ToMaterializeConfig(rootDir), nil)
	if err != nil {
		return fmt.Errorf("failed to create materializer: %w", err)
	}

	compiled, artifacts, err := orch.Compile(ctx)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	printf(cmd, "✓ Compiled %d labels and %d relationship types\n", len(compiled.Labels), len(compiled.Relationships))
	printf(cmd, "  Node files:         %d\n", len(artifacts.NodeFiles))
	printf(cmd, "  Relationship files: %d\n", len(artifacts.RelationshipFiles))
	printf(cmd, "  Constraint script:  %s\n", artifacts.ConstraintScript)
	printf(cmd, "  Trigger script:     %s\n", artifacts.TriggerScript)
	printf(cmd, "  Foreign keys:       %s\n", artifacts.ForeignKeyFile)
	return nil
}
