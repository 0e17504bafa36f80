// Package board provides the backends a diagnostic run can target: a fully
// software-simulated board, or a real board reached through a debug-probe
// bridge on a serial port. Every backend exposes the bus controller surface
// for bring-up and plain word-at-a-time memory access for the benchmarks.
package board

import "github.com/FarLeftLane/psrambench/pkg/qmi"

// MemoryBus is word access to the board's address space. Load and store
// deliberately return no error: they sit in benchmark inner loops. A backend
// that can fail (the serial bridge) records the first failure, and Err
// reports it after the run.
type MemoryBus interface {
	LoadWord(addr uint32) uint32
	StoreWord(addr uint32, v uint32)
	Err() error
}

// Board is one diagnostic target.
type Board interface {
	qmi.Controller
	MemoryBus

	// Name returns a human-readable description of this board. Not machine
	// readable.
	Name() string
	// Connect establishes communication. It may block. When it returns, the
	// bus controller and memory regions are usable.
	Connect() error
	Disconnect() error
	Regions() []*Region
}

// RegionByName finds a region by its table name.
func RegionByName(b Board, name string) *Region {
	for _, r := range b.Regions() {
		if r.Name == name {
			return r
		}
	}
	return nil
}
