package board

import (
	"net"
	"testing"

	"github.com/FarLeftLane/psrambench/pkg/psram"
	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

// bridgePair connects a Bridge client to a simulated board through the wire
// protocol, the way cmd/bridgesim does over a unix socket.
func bridgePair(t *testing.T, cfg SimConfig) (*Bridge, *SimBoard) {
	t.Helper()
	sim := NewSimBoard(cfg)
	client, server := net.Pipe()
	go ServeBridge(server, sim)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewBridge(client, "test bridge"), sim
}

func TestBridgePing(t *testing.T) {
	br, _ := bridgePair(t, SimConfig{TestWords: 64})
	if err := br.Connect(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestBridgeBringUp(t *testing.T) {
	br, _ := bridgePair(t, SimConfig{TestWords: 64, ExtendedID: 0x20})

	size, err := psram.NewDevice(br).Setup(150_000_000, qmi.DefaultLimits)
	if err != nil {
		t.Fatalf("bring-up over bridge failed: %v", err)
	}
	if size != 4*1024*1024 {
		t.Fatalf("got capacity %d, want 4MB", size)
	}

	// Word access through the bridge reaches the same storage.
	br.StoreWord(PSRAMBase+4, 0xFEEDBEEF)
	if got := br.LoadWord(PSRAMBase + 4); got != 0xFEEDBEEF {
		t.Fatalf("readback over bridge %#08x, want 0xFEEDBEEF", got)
	}
	if err := br.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}
}

func TestBridgeRejectedOp(t *testing.T) {
	br, _ := bridgePair(t, SimConfig{TestWords: 64})

	// Chip select without direct mode must come back as a rejection, not a
	// protocol breakdown.
	if err := br.AssertCS(); err == nil {
		t.Fatal("expected chip-select assert to be rejected")
	}
	// The session must still be usable.
	if err := br.Connect(); err != nil {
		t.Fatalf("session broken after rejected op: %v", err)
	}
}
