package qmi

// Timing holds the derived mapped-mode timing parameters for one external
// memory device. All values are in the units the controller's timing
// register expects: MaxSelect in multiples of 64 system clocks, MinDeselect
// and RXDelay in system clocks.
type Timing struct {
	ClockDivider int
	MaxSelect    int
	MinDeselect  int
	RXDelay      int
}

// Limits are the datasheet figures timing derivation works from.
type Limits struct {
	MaxSCKHz        int64 // maximum serial clock the chip supports
	MaxSelectNS     int64 // longest the chip tolerates CS asserted
	MinDeselectNS   int64 // shortest CS deassert between operations
	HighSysClockHz  int64 // above this, the bus cannot run undivided
}

// DefaultLimits matches the APS6404-family PSRAM datasheet at 3.3V.
var DefaultLimits = Limits{
	MaxSCKHz:       133_000_000,
	MaxSelectNS:    8000,
	MinDeselectNS:  18,
	HighSysClockHz: 100_000_000,
}

const femtosPerSecond = 1_000_000_000_000_000

// DeriveTiming computes the timing register values for a given system clock.
// Pure integer arithmetic in femtoseconds; total for any clockHz > 0.
func DeriveTiming(clockHz int64, lim Limits) Timing {
	divider := (clockHz + lim.MaxSCKHz - 1) / lim.MaxSCKHz
	if divider == 1 && clockHz > lim.HighSysClockHz {
		// The chip could keep up, but the controller cannot drive the bus
		// at full undivided speed this far above 100MHz.
		divider = 2
	}

	rxdelay := divider
	if clockHz/divider > lim.HighSysClockHz {
		rxdelay++
	}

	periodFS := int64(femtosPerSecond) / clockHz

	// MaxSelect register counts in 64-system-clock units, so the budget per
	// unit is MaxSelectNS/64 nanoseconds (125ns for the 8us datasheet
	// figure), rounded down.
	maxSelect := (lim.MaxSelectNS / 64) * 1_000_000 / periodFS

	// MinDeselect counts raw system clocks, rounded up, less the half
	// divider the controller's deselect counter already stretches by.
	minDeselect := (lim.MinDeselectNS*1_000_000+periodFS-1)/periodFS - (divider+1)/2

	return Timing{
		ClockDivider: int(divider),
		MaxSelect:    int(maxSelect),
		MinDeselect:  int(minDeselect),
		RXDelay:      int(rxdelay),
	}
}
