// Package psram speaks the wire protocol of an APS6404-family serial PSRAM
// chip through a qmi.Controller, and owns the whole bring-up sequence:
// identify the chip, reset it, switch it to quad mode and configure the
// controller so the chip shows up as plain addressable memory.
package psram

import (
	"errors"
	"fmt"
	"log"

	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

// Identity is the two id bytes a ReadID exchange returns.
type Identity struct {
	ManufacturerID byte
	ExtendedID     byte
}

// ErrUnknownDevice is returned by Setup when the chip does not identify as a
// supported part. The caller is expected to log it and keep going; the
// mapped regions are simply never configured.
var ErrUnknownDevice = errors.New("unknown device id")

// Device drives one PSRAM chip attached through a bus controller.
type Device struct {
	ctrl qmi.Controller
	tr   qmi.Transaction
}

func NewDevice(ctrl qmi.Controller) *Device {
	return &Device{ctrl: ctrl, tr: qmi.NewTransaction(ctrl)}
}

// ReadID performs the identify exchange: one command byte followed by six
// no-op bytes, with the sixth and seventh response bytes carrying the
// manufacturer and extended id. It does not validate the result.
func (d *Device) ReadID() (Identity, error) {
	tx := []byte{CmdReadID, CmdNoOp, CmdNoOp, CmdNoOp, CmdNoOp, CmdNoOp, CmdNoOp}
	rx, err := d.tr.Exchange(tx)
	if err != nil {
		return Identity{}, fmt.Errorf("identify exchange failed: %v", err)
	}
	return Identity{ManufacturerID: rx[5], ExtendedID: rx[6]}, nil
}

// Reset issues the reset/mode-enable sequence: reset-enable, reset,
// quad-enable, linear-burst-enable, each in its own select cycle with a
// settle delay before the next command.
func (d *Device) Reset() error {
	seq := []byte{CmdResetEnable, CmdReset, CmdQuadEnable, CmdLinearBurstToggle}
	for _, cmd := range seq {
		if err := d.tr.Command(cmd); err != nil {
			return fmt.Errorf("command %#02x failed: %v", cmd, err)
		}
		settleDelay()
	}
	return nil
}

// exitQuadMode backs the chip out of quad mode so the identify command is
// understood. Harmless when the chip is already in serial mode; necessary
// when a previous run left it in quad mode.
func (d *Device) exitQuadMode() error {
	return d.tr.QuadCommand(CmdQuadDisable)
}

// configureMapMode programs the controller's mapped-access formats and
// timing for this chip and enables writes to the mapped region.
func (d *Device) configureMapMode(t qmi.Timing) error {
	if err := d.ctrl.SetTimingWindow(t); err != nil {
		return fmt.Errorf("cannot program timing window: %v", err)
	}
	cfg := qmi.MapConfig{
		ReadCommand:     CmdQuadRead,
		WriteCommand:    CmdQuadWrite,
		ReadDummyCycles: ReadDummyCycles,
	}
	if err := d.ctrl.ConfigureMapMode(cfg); err != nil {
		return fmt.Errorf("cannot program map mode formats: %v", err)
	}
	if err := d.ctrl.EnableWrites(); err != nil {
		return fmt.Errorf("cannot enable mapped writes: %v", err)
	}
	return nil
}

// Setup runs the full bring-up against a chip and returns its capacity in
// bytes. Interrupts stay disabled for each direct-mode sequence: the
// processor may fetch code over the very bus the transactions are driving.
//
// An unidentified chip is not fatal to the caller: Setup returns 0 and
// ErrUnknownDevice, leaves the controller out of direct mode and never
// touches the map-mode registers.
func (d *Device) Setup(clockHz int64, lim qmi.Limits) (int64, error) {
	timing := qmi.DeriveTiming(clockHz, lim)
	log.Printf("Max Select: %d, Min Deselect: %d, clock divider: %d",
		timing.MaxSelect, timing.MinDeselect, timing.ClockDivider)

	id, err := d.identify()
	if err != nil {
		return 0, err
	}
	if id.ManufacturerID != ExpectedManufacturerID {
		log.Printf("Invalid PSRAM ID: %x", id.ManufacturerID)
		return 0, ErrUnknownDevice
	}
	log.Printf("Valid PSRAM ID: %x", id.ManufacturerID)

	if err := d.initialize(timing); err != nil {
		return 0, err
	}

	size := Capacity(id.ExtendedID)
	log.Printf("PSRAM ID: %x %x", id.ManufacturerID, id.ExtendedID)
	return size, nil
}

// identify probes the chip inside its own interrupt-disable window.
func (d *Device) identify() (Identity, error) {
	guard := qmi.DisableInterrupts(d.ctrl)
	defer guard.Release()

	if err := d.ctrl.EnterDirectMode(qmi.DirectClockDivider); err != nil {
		return Identity{}, fmt.Errorf("cannot enter direct mode: %v", err)
	}
	defer d.ctrl.ExitDirectMode()

	if err := d.exitQuadMode(); err != nil {
		return Identity{}, fmt.Errorf("cannot exit quad mode: %v", err)
	}
	return d.ReadID()
}

// initialize resets and reconfigures an identified chip, then programs the
// controller for mapped access, all in one interrupt-disable window.
func (d *Device) initialize(t qmi.Timing) error {
	guard := qmi.DisableInterrupts(d.ctrl)
	defer guard.Release()

	if err := d.ctrl.EnterDirectMode(qmi.DirectClockDivider); err != nil {
		return fmt.Errorf("cannot enter direct mode: %v", err)
	}
	if err := d.Reset(); err != nil {
		d.ctrl.ExitDirectMode()
		return err
	}
	if err := d.ctrl.ExitDirectMode(); err != nil {
		return fmt.Errorf("cannot exit direct mode: %v", err)
	}
	return d.configureMapMode(t)
}
