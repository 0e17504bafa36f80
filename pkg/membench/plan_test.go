package membench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FarLeftLane/psrambench/pkg/board"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPlan(t *testing.T) {
	path := writePlan(t, "size_words: 1024\nloop_scale: 2\nregions: [sram, psram]\n")

	p, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, p.SizeWords)
	assert.Equal(t, 2, p.LoopScale)
	assert.Equal(t, []string{"sram", "psram"}, p.Regions)
}

func TestLoadPlanRejectsBadSize(t *testing.T) {
	path := writePlan(t, "size_words: 1000\n")
	_, err := LoadPlan(path)
	assert.Error(t, err)
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPlanMatrixDefaults(t *testing.T) {
	b := board.NewSimBoard(board.SimConfig{})

	// An empty plan is the full compiled-in matrix.
	ctx, err := (&Plan{}).Matrix(b)
	require.NoError(t, err)
	assert.Len(t, ctx.Cases, 14)
	assert.Equal(t, board.DefaultTestWords, ctx.Cases[0].SizeWords)
	assert.Equal(t, DefaultLoopScale, ctx.Cases[0].LoopScale)
}

func TestPlanMatrixRegionFilter(t *testing.T) {
	b := board.NewSimBoard(board.SimConfig{})

	ctx, err := (&Plan{SizeWords: 256, LoopScale: 1, Regions: []string{"sram"}}).Matrix(b)
	require.NoError(t, err)
	// SRAM appears in all four pattern groups.
	require.Len(t, ctx.Cases, 4)
	for _, c := range ctx.Cases {
		assert.Equal(t, "sram", c.Region.Name)
		assert.Equal(t, 256, c.SizeWords)
	}
}

func TestPlanMatrixUnknownRegion(t *testing.T) {
	b := board.NewSimBoard(board.SimConfig{})
	_, err := (&Plan{Regions: []string{"vram"}}).Matrix(b)
	assert.Error(t, err)
}
