// Package qmi models the quad memory interface controller that sits between
// the CPU and an external serial memory chip. During bring-up the controller
// runs in direct mode, where software clocks individual command and data
// bytes over the bus; after configuration it runs in mapped mode, where the
// controller translates ordinary memory accesses into the serial protocol on
// its own.
package qmi

// Controller is the capability surface of the bus controller. A board
// backend provides either a software simulation of the controller or a
// bridge to the real register block.
type Controller interface {
	// EnterDirectMode enables manual byte-by-byte transactions. The clock
	// divider here is the probe-time divider, not the mapped-mode one;
	// bring-up always runs the bus slow.
	EnterDirectMode(clkdiv int) error
	ExitDirectMode() error

	// AssertCS and DeassertCS frame one transaction. Transfer clocks a
	// single byte out and returns the byte clocked back in; it blocks until
	// the controller reports the transaction complete. TransferQuad sends
	// one byte with all four data lines driven, used to back a chip out of
	// quad mode before identification.
	AssertCS() error
	Transfer(b byte) (byte, error)
	TransferQuad(b byte) error
	DeassertCS() error

	// SetTimingWindow programs the per-device timing register for mapped
	// mode. ConfigureMapMode programs the read/write command formats.
	// EnableWrites sets the controller's write-enable flag for the mapped
	// region.
	SetTimingWindow(t Timing) error
	ConfigureMapMode(cfg MapConfig) error
	EnableWrites() error

	// SaveAndDisableInterrupts and RestoreInterrupts bracket the bring-up
	// critical section. The processor may fetch code through the same bus a
	// direct transaction is driving, so nothing may preempt the sequence.
	SaveAndDisableInterrupts() uint32
	RestoreInterrupts(state uint32)
}

// MapConfig selects the command formats for continuous mapped access.
type MapConfig struct {
	ReadCommand     byte
	WriteCommand    byte
	ReadDummyCycles int
}

// DirectClockDivider is the conservative divider used while the controller
// is in direct mode. Identification must work before the chip's real speed
// limits are known.
const DirectClockDivider = 30

// IRQGuard is a scoped interrupt-disable. Release restores interrupts and is
// safe to call more than once, so it can sit in a defer while an early
// return path releases explicitly.
type IRQGuard struct {
	ctrl     Controller
	state    uint32
	released bool
}

func DisableInterrupts(ctrl Controller) *IRQGuard {
	return &IRQGuard{ctrl: ctrl, state: ctrl.SaveAndDisableInterrupts()}
}

func (g *IRQGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.ctrl.RestoreInterrupts(g.state)
}
