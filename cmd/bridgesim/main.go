// bridgesim serves a simulated board behind the probe bridge protocol on a
// UNIX socket, so the bridge client path can be exercised end to end
// without hardware:
//
//	bridgesim -socket /tmp/psram.sock &
//	psrambench -socket /tmp/psram.sock -size_words 1024 -loop_scale 1
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/FarLeftLane/psrambench/pkg/board"
	"github.com/FarLeftLane/psrambench/pkg/psram"
)

var (
	socketPath = flag.String("socket", "/tmp/psram.sock", "Path of the UNIX socket to listen on.")
	clockHz    = flag.Int64("clock_hz", 150_000_000, "System clock frequency of the simulated board, in Hz.")
	simEID     = flag.Uint("sim_eid", 0x40, "Extended id byte the simulated chip reports.")
	simID      = flag.Uint("sim_id", psram.ExpectedManufacturerID, "Manufacturer id byte the simulated chip reports.")
)

func handleConnection(conn net.Conn) {
	defer conn.Close()

	// Each connection gets its own board, so a half-finished bring-up on a
	// dropped connection cannot leak into the next one.
	b := board.NewSimBoard(board.SimConfig{
		ClockHz:        *clockHz,
		ManufacturerID: byte(*simID),
		ExtendedID:     byte(*simEID),
	})
	if err := board.ServeBridge(conn, b); err != nil {
		fmt.Println("Bridge session ended with error:", err)
		return
	}
	fmt.Println("Bridge session ended")
}

func main() {
	flag.Parse()

	// Remove the socket file if it already exists
	if err := os.Remove(*socketPath); err != nil && !os.IsNotExist(err) {
		fmt.Println("Error removing existing socket:", err)
		return
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		fmt.Println("Error creating socket listener:", err)
		return
	}
	defer listener.Close()

	fmt.Println("Serving simulated board on UNIX socket:", *socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Println("Error accepting connection:", err)
			continue
		}
		go handleConnection(conn)
	}
}
