package board

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/FarLeftLane/psrambench/pkg/qmi"
)

// Debug-probe bridge protocol. One-letter opcodes, little-endian arguments,
// a one-byte status reply ('+' ok, '-' failed) followed by any payload. The
// probe on the far end pokes the real controller registers; ServeBridge
// answers with a simulated board instead.
const (
	opPing          = 'A'
	opEnterDirect   = 'E'
	opExitDirect    = 'X'
	opAssertCS      = 'S'
	opDeassertCS    = 'D'
	opTransfer      = 'T'
	opTransferQuad  = 'Q'
	opSetTiming     = 'G'
	opConfigureMap  = 'M'
	opEnableWrites  = 'W'
	opIRQSave       = 'I'
	opIRQRestore    = 'J'
	opLoadWord      = 'r'
	opStoreWord     = 'w'

	replyOK     = '+'
	replyFailed = '-'
	replyPong   = 'R'
)

// ServeBridge answers bridge requests from stream against b until the
// stream closes. It is how tests and cmd/bridgesim stand in for a real
// probe.
func ServeBridge(stream io.ReadWriter, b Board) error {
	buf := make([]byte, 16)
	for {
		if _, err := io.ReadFull(stream, buf[:1]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("cannot read request: %v", err)
		}
		if err := serveOne(stream, b, buf[0], buf[1:]); err != nil {
			return err
		}
	}
}

func serveOne(stream io.ReadWriter, b Board, op byte, buf []byte) error {
	ack := func(err error, payload []byte) error {
		if err != nil {
			log.Printf("bridge: op %q failed: %v", op, err)
			_, werr := stream.Write([]byte{replyFailed})
			return werr
		}
		if _, werr := stream.Write([]byte{replyOK}); werr != nil {
			return werr
		}
		if len(payload) > 0 {
			if _, werr := stream.Write(payload); werr != nil {
				return werr
			}
		}
		return nil
	}

	switch op {
	case opPing:
		_, err := stream.Write([]byte{replyPong})
		return err

	case opEnterDirect:
		if _, err := io.ReadFull(stream, buf[:1]); err != nil {
			return err
		}
		return ack(b.EnterDirectMode(int(buf[0])), nil)

	case opExitDirect:
		return ack(b.ExitDirectMode(), nil)

	case opAssertCS:
		return ack(b.AssertCS(), nil)

	case opDeassertCS:
		return ack(b.DeassertCS(), nil)

	case opTransfer:
		if _, err := io.ReadFull(stream, buf[:1]); err != nil {
			return err
		}
		r, err := b.Transfer(buf[0])
		return ack(err, []byte{r})

	case opTransferQuad:
		if _, err := io.ReadFull(stream, buf[:1]); err != nil {
			return err
		}
		return ack(b.TransferQuad(buf[0]), nil)

	case opSetTiming:
		if _, err := io.ReadFull(stream, buf[:8]); err != nil {
			return err
		}
		t := qmi.Timing{
			ClockDivider: int(binary.LittleEndian.Uint16(buf[0:])),
			MaxSelect:    int(binary.LittleEndian.Uint16(buf[2:])),
			MinDeselect:  int(binary.LittleEndian.Uint16(buf[4:])),
			RXDelay:      int(binary.LittleEndian.Uint16(buf[6:])),
		}
		return ack(b.SetTimingWindow(t), nil)

	case opConfigureMap:
		if _, err := io.ReadFull(stream, buf[:3]); err != nil {
			return err
		}
		cfg := qmi.MapConfig{
			ReadCommand:     buf[0],
			WriteCommand:    buf[1],
			ReadDummyCycles: int(buf[2]),
		}
		return ack(b.ConfigureMapMode(cfg), nil)

	case opEnableWrites:
		return ack(b.EnableWrites(), nil)

	case opIRQSave:
		state := b.SaveAndDisableInterrupts()
		payload := make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, state)
		return ack(nil, payload)

	case opIRQRestore:
		if _, err := io.ReadFull(stream, buf[:4]); err != nil {
			return err
		}
		b.RestoreInterrupts(binary.LittleEndian.Uint32(buf))
		return ack(nil, nil)

	case opLoadWord:
		if _, err := io.ReadFull(stream, buf[:4]); err != nil {
			return err
		}
		v := b.LoadWord(binary.LittleEndian.Uint32(buf))
		payload := make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, v)
		return ack(nil, payload)

	case opStoreWord:
		if _, err := io.ReadFull(stream, buf[:8]); err != nil {
			return err
		}
		b.StoreWord(binary.LittleEndian.Uint32(buf[0:]), binary.LittleEndian.Uint32(buf[4:]))
		return ack(nil, nil)
	}
	return fmt.Errorf("unknown bridge op %#02x", op)
}
