// Package membench runs the memory benchmark matrix: sequential and random,
// read and write, over each region of a board, timing each combination and
// sanity-checking the regions first.
package membench

import (
	"fmt"
	"io"
	"time"

	"github.com/FarLeftLane/psrambench/pkg/board"
)

// Case is one benchmark: a region, an access pattern and a repeat count.
// ElapsedUS is filled in by Run.
type Case struct {
	Region    *board.Region
	SizeWords int
	LoopScale int
	Read      bool
	Random    bool
	Name      string
	ElapsedUS int64
}

// Context owns the ordered case list and the sink value that keeps the
// access loops observable. Case order is report order, nothing more.
type Context struct {
	Cases []*Case
	sink  uint32
}

// DefaultLoopScale gives loopScale*100 passes over the buffer per case.
const DefaultLoopScale = 200

// NewMatrix builds the standard benchmark matrix over a board's regions:
// sequential reads of every region, random reads of every region, then
// sequential and random writes of the writable ones. sizeWords must be a
// power of two (the random index generator masks with sizeWords-1) and must
// fit every region.
func NewMatrix(b board.Board, sizeWords, loopScale int) (*Context, error) {
	if sizeWords <= 0 || sizeWords&(sizeWords-1) != 0 {
		return nil, fmt.Errorf("size %d words is not a power of two", sizeWords)
	}
	ctx := &Context{}
	add := func(r *board.Region, read, random bool, name string) error {
		if sizeWords > r.SizeWords {
			return fmt.Errorf("size %d words exceeds region %q (%d words)", sizeWords, r.Name, r.SizeWords)
		}
		ctx.Cases = append(ctx.Cases, &Case{
			Region:    r,
			SizeWords: sizeWords,
			LoopScale: loopScale,
			Read:      read,
			Random:    random,
			Name:      name,
		})
		return nil
	}

	type entry struct {
		region       string
		read, random bool
		name         string
	}
	matrix := []entry{
		{"sram", true, false, "SEQ SRAM READ"},
		{"rom", true, false, "SEQ ROM READ"},
		{"psram", true, false, "SEQ PSRAM READ"},
		{"psram-nocache", true, false, "SEQ PSRAM NOCACHE READ"},

		{"sram", true, true, "RND SRAM READ"},
		{"rom", true, true, "RND ROM READ"},
		{"psram", true, true, "RND PSRAM READ"},
		{"psram-nocache", true, true, "RND PSRAM NOCACHE READ"},

		{"sram", false, false, "SEQ SRAM WRITE"},
		{"psram", false, false, "SEQ PSRAM WRITE"},
		{"psram-nocache", false, false, "SEQ PSRAM NOCACHE WRITE"},

		{"sram", false, true, "RND SRAM WRITE"},
		{"psram", false, true, "RND PSRAM WRITE"},
		{"psram-nocache", false, true, "RND PSRAM NOCACHE WRITE"},
	}
	for _, e := range matrix {
		r := board.RegionByName(b, e.region)
		if r == nil {
			return nil, fmt.Errorf("board has no region %q", e.region)
		}
		if err := add(r, e.read, e.random, e.name); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Run executes every case in order and writes one report line per case:
//
//	Test, <label>, <base hex>, <size words>, <elapsed microseconds>
func (ctx *Context) Run(mem board.MemoryBus, w io.Writer) {
	for _, c := range ctx.Cases {
		c.ElapsedUS = ctx.runCase(mem, c)
		fmt.Fprintf(w, "Test, %s, 0x%08X, %d, %d\n", c.Name, c.Region.Base, c.SizeWords, c.ElapsedUS)
	}
}

// runCase times loopScale*100 passes over the buffer, one word access per
// inner step. The running value lands in the context sink afterwards so the
// loops cannot be optimized away.
func (ctx *Context) runCase(mem board.MemoryBus, c *Case) int64 {
	start := time.Now()
	loops := 100 * c.LoopScale
	base := c.Region.Base
	mask := uint32(c.SizeWords - 1)
	value := uint32(0)

	if c.Random {
		lcg := NewLCG()
		if c.Read {
			for loop := 0; loop < loops; loop++ {
				for i := 0; i < c.SizeWords; i++ {
					value += mem.LoadWord(base + 4*(lcg.Next()&mask))
				}
			}
		} else {
			for loop := 0; loop < loops; loop++ {
				for i := 0; i < c.SizeWords; i++ {
					mem.StoreWord(base+4*(lcg.Next()&mask), value)
					value++
				}
			}
		}
	} else {
		if c.Read {
			for loop := 0; loop < loops; loop++ {
				for i := 0; i < c.SizeWords; i++ {
					value += mem.LoadWord(base + 4*uint32(i))
				}
			}
		} else {
			for loop := 0; loop < loops; loop++ {
				for i := 0; i < c.SizeWords; i++ {
					mem.StoreWord(base+4*uint32(i), value)
					value++
				}
			}
		}
	}

	elapsed := time.Since(start).Microseconds()
	ctx.sink = value
	return elapsed
}

// Sink returns the last value the access loops produced. Only there to keep
// the loops honest; not a meaningful result.
func (ctx *Context) Sink() uint32 { return ctx.sink }
