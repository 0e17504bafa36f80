package psram

const mib = 1024 * 1024

// Capacity derives the chip's byte capacity from its extended id. The size
// class lives in the top three bits; 0x26 is a known 8MB part that predates
// the size-class encoding. Unlisted classes fall back to the smallest part —
// the datasheets do not say what they mean, so the conservative figure wins.
func Capacity(extendedID byte) int64 {
	sizeID := extendedID >> 5
	switch {
	case extendedID == 0x26 || sizeID == 2:
		return 8 * mib
	case sizeID == 1:
		return 4 * mib
	default:
		return 1 * mib
	}
}
