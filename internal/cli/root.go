package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mvp-joe/graphport/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	dirFlag   string
	quietFlag bool
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "graphport",
	Short: "Graphport - turn relational exports into a Neo4j bulk import",
	Long: `Graphport materializes a relational database into the file set of a
Neo4j bulk import.

Given a schema description (tables, columns, primary and foreign keys) and one
CSV export per table, it writes a node file per table, a relationship file per
foreign-key reference, and Cypher scripts for uniqueness, existence and type
constraints.

Typical workflow:
  graphport extract        # optional: schema + CSVs from PostgreSQL
  graphport materialize    # node and relationship files
  graphport import         # neo4j-admin import, then apply scripts
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quietFlag {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <dir>/.graphport/config.yml)")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "project root directory (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadProject resolves the project root and loads its configuration.
func loadProject() (string, *config.Config, error) {
	rootDir := dirFlag
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	loader := config.NewLoader(rootDir)
	if cfgFile != "" {
		loader = config.NewFileLoader(rootDir, cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if verbose && !quietFlag {
		if cfg.File != "" {
			fmt.Fprintln(os.Stderr, "Using config file:", cfg.File)
		} else {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults")
		}
	}
	return rootDir, cfg, nil
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext(action string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nInterrupted! Cancelling %s...\n", action)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// printf writes user-facing output unless --quiet is set.
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	if quietFlag {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
