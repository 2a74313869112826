package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CLIProgressReporter implements progress reporting with progress bars.
// Node callbacks may arrive concurrently, so all state sits behind mu.
type CLIProgressReporter struct {
	mu sync.Mutex

	quiet   bool
	out     io.Writer
	nodeBar *progressbar.ProgressBar
	relBar  *progressbar.ProgressBar

	nodeRows int
	edges    int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   os.Stdout,
	}
}

func (c *CLIProgressReporter) newBar(total int, description, its string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(its),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnStageStart(stage materialize.Stage) {
	if c.quiet {
		return
	}
	switch stage {
	case materialize.StageCompilingSchema:
		log.Println("Compiling schema...")
	case materialize.StageMaterializingNodes:
		log.Println("Materializing nodes...")
	case materialize.StageMaterializingRelationships:
		log.Println("Materializing relationships...")
	}
}

func (c *CLIProgressReporter) OnSchemaCompiled(labels, relationships int) {
	if c.quiet {
		return
	}
	log.Printf("Schema compiled: %d labels, %d relationship types\n", labels, relationships)
}

func (c *CLIProgressReporter) OnNodesStart(totalLabels int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeRows = 0
	c.nodeBar = c.newBar(totalLabels, "Writing node files", "files/s")
}

func (c *CLIProgressReporter) OnNodeFileWritten(label string, rows int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeRows += rows
	if c.nodeBar != nil {
		c.nodeBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnRelationshipsStart(totalTypes int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Finish the node bar in case it never reached its total
	if c.nodeBar != nil {
		c.nodeBar.Finish()
		c.nodeBar = nil
	}
	c.edges = 0
	c.relBar = c.newBar(totalTypes, "Writing relationship files", "files/s")
}

func (c *CLIProgressReporter) OnRelationshipFileWritten(relType string, edges int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edges += edges
	if c.relBar != nil {
		c.relBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(result *materialize.Result) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, bar := range []*progressbar.ProgressBar{c.nodeBar, c.relBar} {
		if bar != nil {
			bar.Exit()
		}
	}
	c.nodeBar, c.relBar = nil, nil

	if result.Err != nil {
		fmt.Fprintf(c.out, "✗ Materialization failed during %s\n", result.FailedStage)
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Materialization complete in %.1fs\n", result.Duration.Seconds())
	fmt.Fprintf(c.out, "  Nodes:         %s in %d files\n", formatNumber(c.nodeRows), len(result.Nodes))
	fmt.Fprintf(c.out, "  Relationships: %s in %d files\n", formatNumber(c.edges), len(result.Relationships))
	if result.ManifestFile != "" {
		fmt.Fprintf(c.out, "  Manifest:      %s\n", result.ManifestFile)
	}
}

var numberPrinter = message.NewPrinter(language.English)

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
