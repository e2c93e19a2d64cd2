package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2mosaic"
)

func TestRunMetricsTextfile(t *testing.T) {
	ledger := img2mosaic.NewUsageLedger()
	ledger.Increment("a")
	ledger.Increment("b")
	mosaic := &img2mosaic.Mosaic{Result: &img2mosaic.Result{
		Grid:   img2mosaic.NewGrid(1, 2),
		Ledger: ledger,
		Stats:  img2mosaic.Stats{Cells: 2, Queries: 5, SpatialRejects: 3},
	}}

	m := newRunMetrics()
	m.observeRun(10, mosaic)
	m.observePhase("match", 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "mosaic.prom")
	require.NoError(t, m.write(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `mosaic_selection_events{kind="queries"} 5`)
	assert.Contains(t, text, `mosaic_selection_events{kind="spatial_rejects"} 3`)
	assert.Contains(t, text, "mosaic_catalog_tiles 10")
	assert.Contains(t, text, "mosaic_distinct_tiles_used 2")
	assert.Contains(t, text, `mosaic_phase_seconds{phase="match"} 1.5`)
}
