package psram

import "time"

// settleDelay covers the chip's post-command settling time between the
// commands of the reset sequence.
func settleDelay() {
	time.Sleep(10 * time.Microsecond)
}
