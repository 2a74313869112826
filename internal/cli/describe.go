package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/mvp-joe/graphport/internal/schema"
	"github.com/spf13/cobra"
)

var (
	describeScriptsFlag bool
	describeLabelFlag   string
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show the graph model compiled from the schema description",
	Long: `Describe compiles the schema description without writing any file and
prints each label with its node file header, the labels it references and
the labels referencing it, followed by every relationship type.

Relationships pointing at a table missing from the schema are listed as
dangling: materializing them fails.

Examples:
  # Whole model
  graphport describe

  # One label, with the generated Cypher
  graphport describe --label USER --scripts
`,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&describeScriptsFlag, "scripts", false, "Also print the constraint and trigger scripts")
	describeCmd.Flags().StringVarP(&describeLabelFlag, "label", "l", "", "Describe a single label")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	compiled, err := materialize.LoadSchema(cfg.ToMaterializeConfig(rootDir).SchemaFile)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	graph, err := schema.NewLabelGraph(compiled)
	if err != nil {
		return fmt.Errorf("failed to build label graph: %w", err)
	}

	labels := compiled.Labels
	if describeLabelFlag != "" {
		ls, ok := compiled.Label(schema.Label(describeLabelFlag))
		if !ok {
			return fmt.Errorf("unknown label %s", describeLabelFlag)
		}
		labels = []*schema.LabelSchema{ls}
	}

	out := cmd.OutOrStdout()
	for _, ls := range labels {
		if err := describeLabel(out, graph, ls); err != nil {
			return err
		}
	}

	if describeLabelFlag == "" {
		fmt.Fprintf(out, "Relationships (%d)\n", len(compiled.Relationships))
		for _, rel := range compiled.Relationships {
			fmt.Fprintf(out, "  %s: %s.%s -> %s.%s\n", rel.Type, rel.SourceLabel, rel.SourceColumn, rel.TargetLabel, rel.TargetColumn)
		}
		if dangling := graph.Dangling(); len(dangling) > 0 {
			fmt.Fprintf(out, "Dangling (%d)\n", len(dangling))
			for _, rel := range dangling {
				fmt.Fprintf(out, "  %s: target label %s is not in the schema\n", rel.Type, rel.TargetLabel)
			}
		}
	}

	if describeScriptsFlag {
		fmt.Fprintln(out)
		fmt.Fprint(out, compiled.ConstraintScript())
		fmt.Fprintln(out)
		fmt.Fprint(out, compiled.ValidationScript())
	}
	return nil
}

func describeLabel(out io.Writer, graph *schema.LabelGraph, ls *schema.LabelSchema) error {
	fmt.Fprintf(out, "%s (table %s)\n", ls.Label, ls.Table)
	fmt.Fprintf(out, "  header:        %s\n", strings.Join(ls.Header(), ";"))
	fmt.Fprintf(out, "  constraints:   %d\n", len(ls.Constraints))

	refs, err := graph.Outgoing(ls.Label)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		fmt.Fprintf(out, "  references:    %s via %s\n", ref.Target, strings.Join(ref.Types, ", "))
	}

	sources, err := graph.ReferencedBy(ls.Label)
	if err != nil {
		return err
	}
	if len(sources) > 0 {
		fmt.Fprintf(out, "  referenced by: %s\n", strings.Join(sources, ", "))
	}
	return nil
}
