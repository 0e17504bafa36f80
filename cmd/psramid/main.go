// psramid probes the chip id without reconfiguring anything else: a quick
// "is the chip alive and what size is it" check.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/FarLeftLane/psrambench/pkg/board"
	"github.com/FarLeftLane/psrambench/pkg/psram"
	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

var (
	serialPort = flag.String("serial", "", "Serial port of the probe bridge. Default is the simulated board.")
	baud       = flag.Int("baud", 115200, "Serial port speed.")
	socketPath = flag.String("socket", "", "Unix socket of a bridgesim instance.")
)

func main() {
	flag.Parse()

	var b board.Board
	var err error

	switch {
	case *serialPort != "":
		b, err = board.NewSerialBridge(*serialPort, *baud)
	case *socketPath != "":
		b, err = board.NewSocketBridge(*socketPath)
	default:
		b = board.NewSimBoard(board.SimConfig{})
	}
	if err != nil {
		fmt.Printf("Cannot open probe bridge: %v\n", err)
		os.Exit(1)
	}

	if err := b.Connect(); err != nil {
		fmt.Printf("Cannot connect to %s: %v\n", b.Name(), err)
		os.Exit(1)
	}
	defer b.Disconnect()

	guard := qmi.DisableInterrupts(b)
	defer guard.Release()

	if err := b.EnterDirectMode(qmi.DirectClockDivider); err != nil {
		fmt.Printf("Cannot enter direct mode: %v\n", err)
		os.Exit(1)
	}
	defer b.ExitDirectMode()

	dev := psram.NewDevice(b)
	id, err := dev.ReadID()
	if err != nil {
		fmt.Printf("Identify failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Manufacturer id: %#02x, extended id: %#02x\n", id.ManufacturerID, id.ExtendedID)
	if id.ManufacturerID != psram.ExpectedManufacturerID {
		fmt.Println("Not a supported chip.")
		os.Exit(1)
	}
	fmt.Printf("Capacity: %d bytes\n", psram.Capacity(id.ExtendedID))
}
