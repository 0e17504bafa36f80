package board

import (
	"fmt"

	"github.com/FarLeftLane/psrambench/pkg/psram"
	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

// SimConfig configures a simulated board. Zero values pick the defaults: a
// 150MHz system clock and an 8MB chip that identifies correctly.
type SimConfig struct {
	ClockHz        int64
	TestWords      int
	ManufacturerID byte
	ExtendedID     byte
}

// SimBoard is a software model of the whole target: bus controller, chip and
// address map. It implements Board, so everything from bring-up to the
// benchmark loops can run against it on the host.
type SimBoard struct {
	clockHz int64
	chip    *simChip
	regions []*Region

	sram    []uint32
	rom     []uint32
	backing []uint32 // chip storage, shared by both external-memory aliases

	// controller state
	directMode    bool
	directClkdiv  int
	csAsserted    bool
	irqDisabled   bool
	timing        qmi.Timing
	timingSet     bool
	mapCfg        qmi.MapConfig
	mapConfigured bool
	writable      bool

	err error
}

func NewSimBoard(cfg SimConfig) *SimBoard {
	if cfg.ClockHz == 0 {
		cfg.ClockHz = 150_000_000
	}
	if cfg.TestWords == 0 {
		cfg.TestWords = DefaultTestWords
	}
	if cfg.ManufacturerID == 0 {
		cfg.ManufacturerID = psram.ExpectedManufacturerID
	}
	if cfg.ExtendedID == 0 {
		cfg.ExtendedID = 0x40 // size class 2, 8MB
	}
	b := &SimBoard{
		clockHz: cfg.ClockHz,
		chip:    newSimChip(cfg.ManufacturerID, cfg.ExtendedID),
		regions: DefaultRegions(cfg.TestWords),
		sram:    make([]uint32, cfg.TestWords),
		rom:     make([]uint32, cfg.TestWords),
		backing: make([]uint32, psram.Capacity(cfg.ExtendedID)/4),
	}
	return b
}

func (b *SimBoard) Name() string {
	return fmt.Sprintf("simulated board, %d Hz system clock", b.clockHz)
}

func (b *SimBoard) ClockHz() int64 { return b.clockHz }

func (b *SimBoard) Connect() error { return nil }

func (b *SimBoard) Disconnect() error { return nil }

func (b *SimBoard) Regions() []*Region { return b.regions }

// mappedReady reports whether external-memory accesses reach the chip: the
// controller must be configured for mapped mode and the chip must actually
// be in quad mode.
func (b *SimBoard) mappedReady() bool {
	return b.mapConfigured &&
		b.mapCfg.ReadCommand == psram.CmdQuadRead &&
		b.mapCfg.WriteCommand == psram.CmdQuadWrite &&
		b.chip.quad
}

// --- qmi.Controller ---

func (b *SimBoard) EnterDirectMode(clkdiv int) error {
	if clkdiv < 1 {
		return fmt.Errorf("bad direct-mode clock divider %d", clkdiv)
	}
	b.directMode = true
	b.directClkdiv = clkdiv
	return nil
}

func (b *SimBoard) ExitDirectMode() error {
	if b.csAsserted {
		return fmt.Errorf("chip select still asserted")
	}
	b.directMode = false
	return nil
}

func (b *SimBoard) AssertCS() error {
	if !b.directMode {
		return fmt.Errorf("not in direct mode")
	}
	b.csAsserted = true
	b.chip.selectChip()
	return nil
}

func (b *SimBoard) DeassertCS() error {
	if !b.csAsserted {
		return fmt.Errorf("chip select not asserted")
	}
	b.csAsserted = false
	b.chip.deselect()
	return nil
}

func (b *SimBoard) Transfer(in byte) (byte, error) {
	if err := b.checkTransfer(); err != nil {
		return 0, err
	}
	return b.chip.transfer(in), nil
}

func (b *SimBoard) TransferQuad(in byte) error {
	if err := b.checkTransfer(); err != nil {
		return err
	}
	b.chip.transferWide(in)
	return nil
}

// checkTransfer enforces the transaction preconditions. An interrupt firing
// mid-transaction on real hardware corrupts both the transfer and the
// interrupted code fetch, so the simulation treats it as a hard error.
func (b *SimBoard) checkTransfer() error {
	if !b.directMode {
		return fmt.Errorf("not in direct mode")
	}
	if !b.csAsserted {
		return fmt.Errorf("chip select not asserted")
	}
	if !b.irqDisabled {
		return fmt.Errorf("direct transaction with interrupts enabled")
	}
	return nil
}

func (b *SimBoard) SetTimingWindow(t qmi.Timing) error {
	if b.directMode {
		return fmt.Errorf("still in direct mode")
	}
	if t.ClockDivider < 1 {
		return fmt.Errorf("bad clock divider %d", t.ClockDivider)
	}
	b.timing = t
	b.timingSet = true
	return nil
}

func (b *SimBoard) ConfigureMapMode(cfg qmi.MapConfig) error {
	if b.directMode {
		return fmt.Errorf("still in direct mode")
	}
	if !b.timingSet {
		return fmt.Errorf("timing window not programmed")
	}
	b.mapCfg = cfg
	b.mapConfigured = true
	return nil
}

func (b *SimBoard) EnableWrites() error {
	if !b.mapConfigured {
		return fmt.Errorf("map mode not configured")
	}
	b.writable = true
	return nil
}

func (b *SimBoard) SaveAndDisableInterrupts() uint32 {
	var prev uint32
	if b.irqDisabled {
		prev = 1
	}
	b.irqDisabled = true
	return prev
}

func (b *SimBoard) RestoreInterrupts(state uint32) {
	b.irqDisabled = state != 0
}

// --- MemoryBus ---

func (b *SimBoard) LoadWord(addr uint32) uint32 {
	switch {
	case b.inRegion(addr, SRAMBase):
		return b.sram[(addr-SRAMBase)/4]
	case b.inRegion(addr, ROMBase):
		return b.rom[(addr-ROMBase)/4]
	case b.inRegion(addr, PSRAMBase):
		return b.loadExternal(addr - PSRAMBase)
	case b.inRegion(addr, PSRAMNoCacheBase):
		return b.loadExternal(addr - PSRAMNoCacheBase)
	}
	b.setErr(fmt.Errorf("load from unmapped address %#08x", addr))
	return 0xFFFFFFFF
}

func (b *SimBoard) StoreWord(addr uint32, v uint32) {
	switch {
	case b.inRegion(addr, SRAMBase):
		b.sram[(addr-SRAMBase)/4] = v
	case b.inRegion(addr, ROMBase):
		// writes to code storage are dropped on the bus
	case b.inRegion(addr, PSRAMBase):
		b.storeExternal(addr-PSRAMBase, v)
	case b.inRegion(addr, PSRAMNoCacheBase):
		b.storeExternal(addr-PSRAMNoCacheBase, v)
	default:
		b.setErr(fmt.Errorf("store to unmapped address %#08x", addr))
	}
}

// loadExternal models a read through the external-memory window. An
// unconfigured window reads as all-ones, the way a floating bus does.
func (b *SimBoard) loadExternal(off uint32) uint32 {
	if !b.mappedReady() {
		return 0xFFFFFFFF
	}
	return b.backing[off/4%uint32(len(b.backing))]
}

func (b *SimBoard) storeExternal(off uint32, v uint32) {
	if !b.mappedReady() || !b.writable {
		return
	}
	b.backing[off/4%uint32(len(b.backing))] = v
}

func (b *SimBoard) inRegion(addr uint32, base uint32) bool {
	for _, r := range b.regions {
		if r.Base == base {
			return r.Contains(addr)
		}
	}
	return false
}

func (b *SimBoard) Err() error { return b.err }

func (b *SimBoard) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
