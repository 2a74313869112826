// Package materialize turns a schema description and raw per-table exports
// into the node and relationship files of a bulk graph import.
//
// A run moves through compiling_schema, materializing_nodes and
// materializing_relationships to done. Each stage finishes writing before the
// next starts; the first failure ends the run in the failed state and leaves
// already written files in place. A fresh run always starts by cleaning the
// import directory and removing the previous run manifest.
package materialize

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/graphport/internal/layout"
	"github.com/mvp-joe/graphport/internal/metadata"
	"github.com/mvp-joe/graphport/internal/schema"
	"github.com/mvp-joe/graphport/internal/tables"
	"golang.org/x/sync/errgroup"
)

// Config holds everything a run needs. It is read, never modified.
type Config struct {
	SchemaFile      string
	TablesDir       string
	IncludePatterns []string
	IgnorePatterns  []string
	Delimiter       rune

	ImportDir    string
	ScriptsDir   string
	FKFile       string
	ManifestFile string

	JoinStrategy string
	Workers      int
	CacheRows    int
}

// Layout returns the artifact layout of the configuration.
func (c Config) Layout() layout.Layout {
	return layout.New(c.ImportDir, c.ScriptsDir, c.FKFile)
}

// Result is the outcome of a run.
type Result struct {
	RunID string
	// Stage is StageDone or StageFailed.
	Stage Stage
	// FailedStage is the stage that was running when the run failed.
	FailedStage Stage
	Err         error

	Schema        *schema.CompiledSchema
	Artifacts     *schema.Artifacts
	Nodes         []FileEntry
	Relationships []FileEntry
	ManifestFile  string
	Duration      time.Duration
}

// Orchestrator sequences schema compilation, node materialization and
// relationship materialization.
type Orchestrator struct {
	cfg      Config
	layout   layout.Layout
	joiner   Joiner
	progress ProgressReporter
	stage    Stage
}

// New creates an orchestrator. A nil progress reporter is replaced with a
// NoOpProgressReporter.
func New(cfg Config, progress ProgressReporter) (*Orchestrator, error) {
	joiner, err := NewJoiner(cfg.JoinStrategy)
	if err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Orchestrator{
		cfg:      cfg,
		layout:   cfg.Layout(),
		joiner:   joiner,
		progress: progress,
	}, nil
}

// LoadSchema parses and compiles a schema description without writing
// anything.
func LoadSchema(path string) (*schema.CompiledSchema, error) {
	tbls, err := metadata.Load(path)
	if err != nil {
		return nil, err
	}
	return schema.Compile(tbls)
}

// Compile runs only the schema stage: clean the import directory, then
// write headers, scripts and the foreign-key descriptor file.
func (o *Orchestrator) Compile(ctx context.Context) (*schema.CompiledSchema, *schema.Artifacts, error) {
	lock, err := layout.LockDir(o.cfg.ImportDir)
	if err != nil {
		return nil, nil, &MaterializationError{Stage: StageCompilingSchema, Subject: o.cfg.ImportDir, Err: err}
	}
	defer lock.Release()

	return o.compile(ctx)
}

// Run executes the whole pipeline. The returned error is the same as
// Result.Err.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}

	lock, err := layout.LockDir(o.cfg.ImportDir)
	if err != nil {
		return o.finish(res, start, &MaterializationError{Stage: StageCompilingSchema, Subject: o.cfg.ImportDir, Err: err})
	}
	defer lock.Release()

	res.Schema, res.Artifacts, err = o.compile(ctx)
	if err != nil {
		return o.finish(res, start, err)
	}

	store, err := o.openStore(res.Schema)
	if err != nil {
		return o.finish(res, start, err)
	}
	defer store.Close()

	res.Nodes, err = o.materializeNodes(ctx, res.Schema, store)
	if err != nil {
		return o.finish(res, start, err)
	}

	res.Relationships, err = o.materializeRelationships(ctx, res.Schema, store)
	if err != nil {
		return o.finish(res, start, err)
	}

	if o.cfg.ManifestFile != "" {
		if err := WriteManifest(o.cfg.ManifestFile, o.manifest(res, start)); err != nil {
			return o.finish(res, start, &MaterializationError{Stage: StageMaterializingRelationships, Subject: o.cfg.ManifestFile, Err: err})
		}
		res.ManifestFile = o.cfg.ManifestFile
	}

	o.setStage(StageDone)
	return o.finish(res, start, nil)
}

func (o *Orchestrator) setStage(stage Stage) {
	o.stage = stage
	o.progress.OnStageStart(stage)
}

func (o *Orchestrator) finish(res *Result, start time.Time, err error) (*Result, error) {
	res.Duration = time.Since(start)
	res.Err = err
	if err != nil {
		res.FailedStage = o.stage
		if res.FailedStage == "" {
			res.FailedStage = StageCompilingSchema
		}
		res.Stage = StageFailed
	} else {
		res.Stage = StageDone
	}
	o.progress.OnComplete(res)
	return res, err
}

func (o *Orchestrator) compile(ctx context.Context) (*schema.CompiledSchema, *schema.Artifacts, error) {
	o.setStage(StageCompilingSchema)
	fail := func(err error) (*schema.CompiledSchema, *schema.Artifacts, error) {
		return nil, nil, &MaterializationError{Stage: StageCompilingSchema, Subject: o.cfg.SchemaFile, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	removed, err := layout.Clean(o.cfg.ImportDir)
	if err != nil {
		return fail(err)
	}
	if removed > 0 {
		log.Printf("Removed %d generated files from %s\n", removed, o.cfg.ImportDir)
	}
	// Only a run that reaches done writes a new manifest.
	if err := RemoveManifest(o.cfg.ManifestFile); err != nil {
		return fail(err)
	}

	compiled, err := LoadSchema(o.cfg.SchemaFile)
	if err != nil {
		return fail(err)
	}

	artifacts, err := schema.Emit(compiled, o.layout)
	if err != nil {
		return fail(err)
	}

	o.progress.OnSchemaCompiled(len(compiled.Labels), len(compiled.Relationships))
	return compiled, artifacts, nil
}

func (o *Orchestrator) openStore(compiled *schema.CompiledSchema) (*tables.Store, error) {
	fail := func(err error) (*tables.Store, error) {
		return nil, &MaterializationError{Stage: StageMaterializingNodes, Subject: o.cfg.TablesDir, Err: err}
	}

	discovery, err := tables.NewDiscovery(o.cfg.TablesDir, o.cfg.IncludePatterns, o.cfg.IgnorePatterns)
	if err != nil {
		return fail(err)
	}
	paths, err := discovery.Discover()
	if err != nil {
		return fail(&layout.IOError{Op: "scan", Path: o.cfg.TablesDir, Err: err})
	}

	var ignored []string
	for label := range paths {
		if _, ok := compiled.Label(label); !ok {
			ignored = append(ignored, label)
		}
	}
	sort.Strings(ignored)
	for _, label := range ignored {
		log.Printf("Ignoring raw table %s: no such label in schema\n", paths[label])
	}

	store, err := tables.NewStore(tables.StoreOptions{
		Dir:       o.cfg.TablesDir,
		Paths:     paths,
		Delimiter: o.cfg.Delimiter,
		RowBudget: o.cfg.CacheRows,
	})
	if err != nil {
		return fail(err)
	}
	return store, nil
}

func (o *Orchestrator) materializeNodes(ctx context.Context, compiled *schema.CompiledSchema, store *tables.Store) ([]FileEntry, error) {
	o.setStage(StageMaterializingNodes)
	o.progress.OnNodesStart(len(compiled.Labels))

	entries := make([]FileEntry, len(compiled.Labels))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.cfg.Workers)

	for i, ls := range compiled.Labels {
		i, ls := i, ls
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return &MaterializationError{Stage: StageMaterializingNodes, Subject: ls.Label, Err: err}
			}

			tbl, err := store.Table(ls.Label)
			if err != nil {
				return &MaterializationError{Stage: StageMaterializingNodes, Subject: ls.Label, Err: err}
			}

			path := o.layout.NodeFile(ls.Label)
			rows, err := MaterializeNodes(ls, tbl, path)
			if err != nil {
				return err
			}

			entries[i] = FileEntry{Name: ls.Label, Path: path, Rows: rows}
			o.progress.OnNodeFileWritten(ls.Label, rows)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (o *Orchestrator) materializeRelationships(ctx context.Context, compiled *schema.CompiledSchema, store *tables.Store) ([]FileEntry, error) {
	o.setStage(StageMaterializingRelationships)

	// The descriptor file is the contract between the two stages.
	descriptors, err := schema.LoadDescriptors(o.layout.FKFile)
	if err != nil {
		return nil, &MaterializationError{Stage: StageMaterializingRelationships, Subject: o.layout.FKFile, Err: err}
	}
	o.progress.OnRelationshipsStart(len(descriptors))

	graph, err := schema.NewLabelGraph(compiled)
	if err != nil {
		return nil, &MaterializationError{Stage: StageMaterializingRelationships, Err: err}
	}
	m := NewRelationshipMaterializer(graph, store, o.joiner)

	entries := make([]FileEntry, 0, len(descriptors))
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, &MaterializationError{Stage: StageMaterializingRelationships, Subject: d.Type, Err: err}
		}

		path := o.layout.RelationshipFile(d.Type)
		edges, err := m.Materialize(ctx, d, path)
		if err != nil {
			return nil, err
		}

		entries = append(entries, FileEntry{Name: d.Type, Path: path, Rows: edges})
		o.progress.OnRelationshipFileWritten(d.Type, edges)
	}
	return entries, nil
}

func (o *Orchestrator) manifest(res *Result, start time.Time) *Manifest {
	strategy := o.cfg.JoinStrategy
	if strategy == "" {
		strategy = JoinHash
	}
	return &Manifest{
		RunID:            res.RunID,
		GeneratedAt:      start.UTC().Truncate(time.Second),
		SchemaFile:       o.cfg.SchemaFile,
		ImportDir:        o.cfg.ImportDir,
		JoinStrategy:     strategy,
		Nodes:            res.Nodes,
		Relationships:    res.Relationships,
		ConstraintScript: res.Artifacts.ConstraintScript,
		TriggerScript:    res.Artifacts.TriggerScript,
		ForeignKeyFile:   res.Artifacts.ForeignKeyFile,
	}
}

// String renders a one-line summary of the result.
func (r *Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("run %s failed during %s: %v", r.RunID, r.FailedStage, r.Err)
	}
	edges := 0
	for _, e := range r.Relationships {
		edges += e.Rows
	}
	nodes := 0
	for _, e := range r.Nodes {
		nodes += e.Rows
	}
	return fmt.Sprintf("run %s done: %d nodes in %d files, %d edges in %d files",
		r.RunID, nodes, len(r.Nodes), edges, len(r.Relationships))
}
