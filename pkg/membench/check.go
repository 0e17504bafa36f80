package membench

import (
	"fmt"
	"io"

	"github.com/FarLeftLane/psrambench/pkg/board"
)

// sentinel is the word the correctness pass writes everywhere.
const sentinel = 0xDEADBEEF

// CheckMem write-then-reads a sentinel across every case's buffer before
// benchmarking, to catch unmapped or defective regions early. Read-only
// regions are skipped outright; everything else reports Passed or Failed at
// the first mismatch. A failed region never stops the others.
//
// One line per case:
//
//	Passed Mem Test, <label> / Failed Mem Test, <label> / Skipped Mem Test, <label>
func (ctx *Context) CheckMem(mem board.MemoryBus, w io.Writer) {
	for _, c := range ctx.Cases {
		if !c.Region.Writable {
			fmt.Fprintf(w, "Skipped Mem Test, %s\n", c.Name)
			continue
		}

		passed := true
		for i := 0; i < c.SizeWords; i++ {
			addr := c.Region.Base + 4*uint32(i)
			mem.StoreWord(addr, sentinel)
			if mem.LoadWord(addr) != sentinel {
				passed = false
				break
			}
		}

		if passed {
			fmt.Fprintf(w, "Passed Mem Test, %s\n", c.Name)
		} else {
			fmt.Fprintf(w, "Failed Mem Test, %s\n", c.Name)
		}
	}
}
