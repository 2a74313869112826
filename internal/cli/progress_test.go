package cli

// Test Plan for CLI Progress Reporter:
// - Quiet reporter writes nothing
// - Completion summary totals rows and edges across files
// - Failed runs report the failed stage
// - Concurrent node callbacks are safe
// - formatNumber inserts thousands separators

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/stretchr/testify/assert"
)

func bufferedReporter(quiet bool) (*CLIProgressReporter, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	r := NewCLIProgressReporter(quiet)
	r.out = buf
	return r, buf
}

func TestCLIProgressReporter_Quiet(t *testing.T) {
	r, buf := bufferedReporter(true)

	r.OnNodesStart(2)
	r.OnNodeFileWritten("USER", 10)
	r.OnRelationshipsStart(1)
	r.OnRelationshipFileWritten("USER_REF_DEPT_ID", 5)
	r.OnComplete(&materialize.Result{Stage: materialize.StageDone})

	assert.Empty(t, buf.String())
}

func TestCLIProgressReporter_Summary(t *testing.T) {
	r, buf := bufferedReporter(false)

	r.OnNodesStart(2)
	r.OnNodeFileWritten("USER", 1500)
	r.OnNodeFileWritten("DEPT", 3)
	r.OnRelationshipsStart(1)
	r.OnRelationshipFileWritten("USER_REF_DEPT_ID", 1200)
	r.OnComplete(&materialize.Result{
		Stage:         materialize.StageDone,
		Nodes:         make([]materialize.FileEntry, 2),
		Relationships: make([]materialize.FileEntry, 1),
		ManifestFile:  "import/manifest.yaml",
		Duration:      1500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "✓ Materialization complete in 1.5s")
	assert.Contains(t, out, "Nodes:         1,503 in 2 files")
	assert.Contains(t, out, "Relationships: 1,200 in 1 files")
	assert.Contains(t, out, "Manifest:      import/manifest.yaml")
}

func TestCLIProgressReporter_Failure(t *testing.T) {
	r, buf := bufferedReporter(false)

	r.OnNodesStart(1)
	r.OnComplete(&materialize.Result{
		Stage:       materialize.StageFailed,
		FailedStage: materialize.StageMaterializingNodes,
		Err:         errors.New("boom"),
	})

	assert.Contains(t, buf.String(), "✗ Materialization failed during materializing_nodes")
}

func TestCLIProgressReporter_ConcurrentNodes(t *testing.T) {
	r, _ := bufferedReporter(false)
	r.OnNodesStart(64)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.OnNodeFileWritten("L", 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, 128, r.nodeRows)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
