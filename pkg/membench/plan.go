package membench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FarLeftLane/psrambench/pkg/board"
)

// Plan is an optional YAML override for the compiled-in matrix: smaller
// buffers or fewer iterations for slow transports, or a region subset when
// chasing one range.
//
//	size_words: 1024
//	loop_scale: 2
//	regions: [sram, psram]
type Plan struct {
	SizeWords int      `yaml:"size_words"`
	LoopScale int      `yaml:"loop_scale"`
	Regions   []string `yaml:"regions"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read plan file: %v", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cannot parse plan file %q: %v", path, err)
	}
	if p.SizeWords != 0 && (p.SizeWords < 0 || p.SizeWords&(p.SizeWords-1) != 0) {
		return nil, fmt.Errorf("size_words %d is not a power of two", p.SizeWords)
	}
	if p.LoopScale < 0 {
		return nil, fmt.Errorf("loop_scale %d is negative", p.LoopScale)
	}
	return &p, nil
}

// Matrix builds the benchmark context for a board with the plan's overrides
// applied.
func (p *Plan) Matrix(b board.Board) (*Context, error) {
	sizeWords := board.DefaultTestWords
	if p.SizeWords != 0 {
		sizeWords = p.SizeWords
	}
	loopScale := DefaultLoopScale
	if p.LoopScale != 0 {
		loopScale = p.LoopScale
	}

	ctx, err := NewMatrix(b, sizeWords, loopScale)
	if err != nil {
		return nil, err
	}
	if len(p.Regions) == 0 {
		return ctx, nil
	}

	wanted := make(map[string]bool)
	for _, name := range p.Regions {
		if board.RegionByName(b, name) == nil {
			return nil, fmt.Errorf("board has no region %q", name)
		}
		wanted[name] = true
	}
	var kept []*Case
	for _, c := range ctx.Cases {
		if wanted[c.Region.Name] {
			kept = append(kept, c)
		}
	}
	ctx.Cases = kept
	return ctx, nil
}
