package board

import "github.com/FarLeftLane/psrambench/pkg/psram"

// simChip is the state machine of a simulated APS6404-family PSRAM chip on
// the far end of the bus. It sees exactly what a real chip sees: a chip
// select, a stream of bytes at serial or quad width, and a deselect that
// completes the command.
type simChip struct {
	manufacturerID byte
	extendedID     byte

	quad        bool
	linearBurst bool
	resetArmed  bool

	selected bool
	wide     bool   // current command arrived at quad width
	rx       []byte // bytes received since select
}

func newSimChip(manufacturerID, extendedID byte) *simChip {
	return &simChip{manufacturerID: manufacturerID, extendedID: extendedID}
}

func (c *simChip) selectChip() {
	c.selected = true
	c.wide = false
	c.rx = nil
}

// transfer clocks one byte into the chip and returns the byte it drives
// back during that same transfer.
func (c *simChip) transfer(b byte) byte {
	c.rx = append(c.rx, b)

	// A chip in quad mode does not understand serial-width commands; it
	// drives nothing meaningful back.
	if c.quad && !c.wide {
		return 0xFF
	}

	// The identify command returns the id bytes on the sixth and seventh
	// transfers of the exchange.
	if len(c.rx) > 0 && c.rx[0] == psram.CmdReadID {
		switch len(c.rx) {
		case 6:
			return c.manufacturerID
		case 7:
			return c.extendedID
		}
	}
	return 0xFF
}

func (c *simChip) transferWide(b byte) {
	c.wide = true
	c.rx = append(c.rx, b)
}

// deselect completes the command accumulated since select and applies its
// effect.
func (c *simChip) deselect() {
	defer func() {
		c.selected = false
		c.rx = nil
	}()
	if len(c.rx) == 0 {
		return
	}
	cmd := c.rx[0]

	if c.wide {
		// The only quad-width command the bring-up uses; anything else at
		// quad width is ignored.
		if cmd == psram.CmdQuadDisable && c.quad {
			c.quad = false
		}
		return
	}
	if c.quad {
		// Serial-width traffic is noise to a chip in quad mode.
		return
	}

	switch cmd {
	case psram.CmdResetEnable:
		c.resetArmed = true
		return
	case psram.CmdReset:
		if c.resetArmed {
			c.quad = false
			c.linearBurst = false
		}
	case psram.CmdQuadEnable:
		c.quad = true
	case psram.CmdLinearBurstToggle:
		c.linearBurst = !c.linearBurst
	}
	// Reset must follow reset-enable immediately.
	c.resetArmed = false
}
