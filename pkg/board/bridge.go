package board

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/FObersteiner/goserial"
	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

// Bridge drives a board on the far side of a debug-probe stream: a serial
// port for real hardware, or any byte stream served by ServeBridge. It
// implements Board.
//
// The MemoryBus methods cannot surface transport failures per access, so
// the first failure sticks and every later load reads as all-ones; check
// Err after a run.
type Bridge struct {
	name    string
	stream  io.ReadWriteCloser
	regions []*Region
	err     error
}

// NewBridge wraps an already-open probe stream.
func NewBridge(stream io.ReadWriteCloser, name string) *Bridge {
	return &Bridge{
		name:    name,
		stream:  stream,
		regions: DefaultRegions(DefaultTestWords),
	}
}

// NewSerialBridge opens a probe on a serial port.
func NewSerialBridge(portPath string, baud int) (*Bridge, error) {
	cfg := &goserial.Config{Name: portPath, Baud: baud}
	port, err := goserial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot open serial port %q: %v", portPath, err)
	}
	return NewBridge(port, fmt.Sprintf("probe bridge at %q", portPath)), nil
}

// NewSocketBridge dials a probe served on a unix socket (cmd/bridgesim).
func NewSocketBridge(socketPath string) (*Bridge, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("cannot dial bridge socket %q: %v", socketPath, err)
	}
	return NewBridge(conn, fmt.Sprintf("probe bridge on socket %q", socketPath)), nil
}

func (b *Bridge) Name() string { return b.name }

// Connect pings the probe once to make sure something answers.
func (b *Bridge) Connect() error {
	if _, err := b.stream.Write([]byte{opPing}); err != nil {
		return fmt.Errorf("cannot ping probe: %v", err)
	}
	reply := []byte{0}
	if _, err := io.ReadFull(b.stream, reply); err != nil {
		return fmt.Errorf("no ping reply from probe: %v", err)
	}
	if reply[0] != replyPong {
		return fmt.Errorf("unexpected ping reply %#02x", reply[0])
	}
	return nil
}

func (b *Bridge) Disconnect() error {
	return b.stream.Close()
}

func (b *Bridge) Regions() []*Region { return b.regions }

// request sends one opcode with args and reads the status byte plus
// replyLen payload bytes.
func (b *Bridge) request(op byte, args []byte, replyLen int) ([]byte, error) {
	msg := append([]byte{op}, args...)
	if _, err := b.stream.Write(msg); err != nil {
		return nil, fmt.Errorf("cannot send op %q: %v", op, err)
	}
	status := []byte{0}
	if _, err := io.ReadFull(b.stream, status); err != nil {
		return nil, fmt.Errorf("no reply to op %q: %v", op, err)
	}
	if status[0] != replyOK {
		return nil, fmt.Errorf("probe rejected op %q", op)
	}
	if replyLen == 0 {
		return nil, nil
	}
	payload := make([]byte, replyLen)
	if _, err := io.ReadFull(b.stream, payload); err != nil {
		return nil, fmt.Errorf("short reply to op %q: %v", op, err)
	}
	return payload, nil
}

// --- qmi.Controller ---

func (b *Bridge) EnterDirectMode(clkdiv int) error {
	_, err := b.request(opEnterDirect, []byte{byte(clkdiv)}, 0)
	return err
}

func (b *Bridge) ExitDirectMode() error {
	_, err := b.request(opExitDirect, nil, 0)
	return err
}

func (b *Bridge) AssertCS() error {
	_, err := b.request(opAssertCS, nil, 0)
	return err
}

func (b *Bridge) DeassertCS() error {
	_, err := b.request(opDeassertCS, nil, 0)
	return err
}

func (b *Bridge) Transfer(in byte) (byte, error) {
	reply, err := b.request(opTransfer, []byte{in}, 1)
	if err != nil {
		return 0, err
	}
	return reply[0], nil
}

func (b *Bridge) TransferQuad(in byte) error {
	_, err := b.request(opTransferQuad, []byte{in}, 0)
	return err
}

func (b *Bridge) SetTimingWindow(t qmi.Timing) error {
	args := make([]byte, 8)
	binary.LittleEndian.PutUint16(args[0:], uint16(t.ClockDivider))
	binary.LittleEndian.PutUint16(args[2:], uint16(t.MaxSelect))
	binary.LittleEndian.PutUint16(args[4:], uint16(t.MinDeselect))
	binary.LittleEndian.PutUint16(args[6:], uint16(t.RXDelay))
	_, err := b.request(opSetTiming, args, 0)
	return err
}

func (b *Bridge) ConfigureMapMode(cfg qmi.MapConfig) error {
	args := []byte{cfg.ReadCommand, cfg.WriteCommand, byte(cfg.ReadDummyCycles)}
	_, err := b.request(opConfigureMap, args, 0)
	return err
}

func (b *Bridge) EnableWrites() error {
	_, err := b.request(opEnableWrites, nil, 0)
	return err
}

func (b *Bridge) SaveAndDisableInterrupts() uint32 {
	reply, err := b.request(opIRQSave, nil, 4)
	if err != nil {
		b.setErr(err)
		return 0
	}
	return binary.LittleEndian.Uint32(reply)
}

func (b *Bridge) RestoreInterrupts(state uint32) {
	args := make([]byte, 4)
	binary.LittleEndian.PutUint32(args, state)
	if _, err := b.request(opIRQRestore, args, 0); err != nil {
		b.setErr(err)
	}
}

// --- MemoryBus ---

func (b *Bridge) LoadWord(addr uint32) uint32 {
	args := make([]byte, 4)
	binary.LittleEndian.PutUint32(args, addr)
	reply, err := b.request(opLoadWord, args, 4)
	if err != nil {
		b.setErr(err)
		return 0xFFFFFFFF
	}
	return binary.LittleEndian.Uint32(reply)
}

func (b *Bridge) StoreWord(addr uint32, v uint32) {
	args := make([]byte, 8)
	binary.LittleEndian.PutUint32(args[0:], addr)
	binary.LittleEndian.PutUint32(args[4:], v)
	if _, err := b.request(opStoreWord, args, 0); err != nil {
		b.setErr(err)
	}
}

func (b *Bridge) Err() error { return b.err }

func (b *Bridge) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
