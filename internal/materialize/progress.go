package materialize

// ProgressReporter provides callbacks for reporting materialization progress.
// Node callbacks may arrive from several goroutines when Workers > 1.
type ProgressReporter interface {
	// OnStageStart is called when the run enters a stage.
	OnStageStart(stage Stage)

	// OnSchemaCompiled is called after headers and scripts are written.
	OnSchemaCompiled(labels, relationships int)

	// Node stage progress
	OnNodesStart(totalLabels int)
	OnNodeFileWritten(label string, rows int)

	// Relationship stage progress
	OnRelationshipsStart(totalTypes int)
	OnRelationshipFileWritten(relType string, edges int)

	// OnComplete is called once with the final result, successful or not.
	OnComplete(result *Result)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnStageStart(stage Stage)                            {}
func (n *NoOpProgressReporter) OnSchemaCompiled(labels, relationships int)          {}
func (n *NoOpProgressReporter) OnNodesStart(totalLabels int)                        {}
func (n *NoOpProgressReporter) OnNodeFileWritten(label string, rows int)            {}
func (n *NoOpProgressReporter) OnRelationshipsStart(totalTypes int)                 {}
func (n *NoOpProgressReporter) OnRelationshipFileWritten(relType string, edges int) {}
func (n *NoOpProgressReporter) OnComplete(result *Result)                           {}
