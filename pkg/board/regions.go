package board

// RP2350-style address map. The external memory window is decoded twice:
// once through the cache and once bypassing it, both reaching the same
// bytes.
const (
	ROMBase          = 0x10000000 // XIP code storage, read-only
	PSRAMBase        = 0x11000000 // external memory, cached alias
	PSRAMNoCacheBase = 0x14000000 // external memory, uncached alias
	SRAMBase         = 0x20000000 // on-chip SRAM test buffer
)

// DefaultTestWords is the per-region test buffer length.
const DefaultTestWords = 16 * 1024

// Region is one memory range under test. Configured starts false for the
// device-backed regions and is set by a successful bring-up; the benchmark
// deliberately does not gate on it, but the report reader should.
type Region struct {
	Name       string
	Base       uint32
	SizeWords  int
	Cached     bool
	Writable   bool
	Configured bool
}

func (r *Region) SizeBytes() int {
	return r.SizeWords * 4
}

func (r *Region) Contains(addr uint32) bool {
	return addr >= r.Base && addr < r.Base+uint32(r.SizeBytes())
}

// MarkConfigured flips the Configured flag on the device-backed regions.
// Called after a successful bring-up.
func MarkConfigured(b Board) {
	for _, r := range b.Regions() {
		if r.Base == PSRAMBase || r.Base == PSRAMNoCacheBase {
			r.Configured = true
		}
	}
}

// DefaultRegions builds the standard region table. The SRAM and ROM regions
// are always valid; the two external-memory aliases become valid only after
// bring-up.
func DefaultRegions(testWords int) []*Region {
	return []*Region{
		{Name: "sram", Base: SRAMBase, SizeWords: testWords, Cached: true, Writable: true, Configured: true},
		{Name: "rom", Base: ROMBase, SizeWords: testWords, Cached: true, Writable: false, Configured: true},
		{Name: "psram", Base: PSRAMBase, SizeWords: testWords, Cached: true, Writable: true},
		{Name: "psram-nocache", Base: PSRAMNoCacheBase, SizeWords: testWords, Cached: false, Writable: true},
	}
}
