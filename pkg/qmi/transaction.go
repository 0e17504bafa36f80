package qmi

import "fmt"

// Transaction frames a sequence of byte transfers between one chip-select
// assert and deassert. The chip select is dropped even when a transfer in
// the middle fails, so a broken exchange cannot wedge the bus.
type Transaction struct {
	ctrl Controller
}

func NewTransaction(ctrl Controller) Transaction {
	return Transaction{ctrl: ctrl}
}

// Exchange clocks every byte of tx over the bus and returns the bytes
// clocked back, one per input byte.
func (t Transaction) Exchange(tx []byte) ([]byte, error) {
	if err := t.ctrl.AssertCS(); err != nil {
		return nil, fmt.Errorf("cannot assert chip select: %v", err)
	}
	rx := make([]byte, 0, len(tx))
	for i, b := range tx {
		r, err := t.ctrl.Transfer(b)
		if err != nil {
			t.ctrl.DeassertCS()
			return nil, fmt.Errorf("transfer failed at byte %d: %v", i, err)
		}
		rx = append(rx, r)
	}
	if err := t.ctrl.DeassertCS(); err != nil {
		return nil, fmt.Errorf("cannot deassert chip select: %v", err)
	}
	return rx, nil
}

// Command sends a single command byte in its own select/deselect cycle,
// discarding the response.
func (t Transaction) Command(b byte) error {
	_, err := t.Exchange([]byte{b})
	return err
}

// QuadCommand sends a single byte with all four data lines driven, in its
// own select/deselect cycle.
func (t Transaction) QuadCommand(b byte) error {
	if err := t.ctrl.AssertCS(); err != nil {
		return fmt.Errorf("cannot assert chip select: %v", err)
	}
	if err := t.ctrl.TransferQuad(b); err != nil {
		t.ctrl.DeassertCS()
		return fmt.Errorf("quad transfer failed: %v", err)
	}
	if err := t.ctrl.DeassertCS(); err != nil {
		return fmt.Errorf("cannot deassert chip select: %v", err)
	}
	return nil
}
