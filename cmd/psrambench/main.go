package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/FarLeftLane/psrambench/pkg/board"
	"github.com/FarLeftLane/psrambench/pkg/membench"
	"github.com/FarLeftLane/psrambench/pkg/psram"
	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

var (
	serialPort = flag.String("serial", "", "Serial port of the probe bridge (like /dev/ttyACM0, or COM4). Default is the simulated board.")
	baud       = flag.Int("baud", 115200, "Serial port speed.")
	socketPath = flag.String("socket", "", "Unix socket of a bridgesim instance, instead of a serial port.")
	clockHz    = flag.Int64("clock_hz", 150_000_000, "System clock frequency of the target, in Hz.")
	planFile   = flag.String("plan", "", "Path to a YAML benchmark plan. Default is the full compiled-in matrix.")
	sizeWords  = flag.Int("size_words", board.DefaultTestWords, "Test buffer length in words; must be a power of two.")
	loopScale  = flag.Int("loop_scale", membench.DefaultLoopScale, "Iteration scale; each test makes loop_scale*100 passes.")
	simEID     = flag.Uint("sim_eid", 0x40, "Extended id byte the simulated chip reports.")
	simID      = flag.Uint("sim_id", psram.ExpectedManufacturerID, "Manufacturer id byte the simulated chip reports.")
)

func main() {
	flag.Parse()

	var b board.Board
	var err error

	switch {
	case *serialPort != "":
		b, err = board.NewSerialBridge(*serialPort, *baud)
		if err != nil {
			fmt.Printf("Cannot open probe bridge: %v\n", err)
			os.Exit(1)
		}
	case *socketPath != "":
		b, err = board.NewSocketBridge(*socketPath)
		if err != nil {
			fmt.Printf("Cannot connect to bridgesim: %v\n", err)
			os.Exit(1)
		}
	default:
		b = board.NewSimBoard(board.SimConfig{
			ClockHz:        *clockHz,
			TestWords:      *sizeWords,
			ManufacturerID: byte(*simID),
			ExtendedID:     byte(*simEID),
		})
	}

	if err := b.Connect(); err != nil {
		fmt.Printf("Cannot connect to %s: %v\n", b.Name(), err)
		os.Exit(1)
	}
	defer b.Disconnect()
	log.Printf("Target: %s", b.Name())

	// Bring up the external memory. An unidentified chip is not fatal: the
	// rest of the matrix still characterizes the board, and the device
	// regions just stay unconfigured.
	dev := psram.NewDevice(b)
	size, err := dev.Setup(*clockHz, qmi.DefaultLimits)
	switch {
	case err == nil:
		board.MarkConfigured(b)
	case errors.Is(err, psram.ErrUnknownDevice):
		// Already logged by Setup; size stays 0.
	default:
		log.Printf("PSRAM bring-up failed: %v", err)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fmt.Printf("psram_size, %d, clock_hz, %d, heap_alloc, %d, heap_sys, %d\n",
		size, *clockHz, ms.HeapAlloc, ms.HeapSys)

	var ctx *membench.Context
	if *planFile != "" {
		plan, err := membench.LoadPlan(*planFile)
		if err != nil {
			fmt.Printf("Bad benchmark plan: %v\n", err)
			os.Exit(1)
		}
		ctx, err = plan.Matrix(b)
		if err != nil {
			fmt.Printf("Cannot build benchmark matrix: %v\n", err)
			os.Exit(1)
		}
	} else {
		ctx, err = membench.NewMatrix(b, *sizeWords, *loopScale)
		if err != nil {
			fmt.Printf("Cannot build benchmark matrix: %v\n", err)
			os.Exit(1)
		}
	}

	// Check memory, then run the tests.
	ctx.CheckMem(b, os.Stdout)
	ctx.Run(b, os.Stdout)

	if err := b.Err(); err != nil {
		fmt.Printf("Transport error during run, results are suspect: %v\n", err)
		os.Exit(1)
	}
}
