package psram

// Command bytes from the APS6404-family datasheet.
const (
	CmdQuadDisable       = 0xF5
	CmdQuadEnable        = 0x35
	CmdReadID            = 0x9F
	CmdResetEnable       = 0x66
	CmdReset             = 0x99
	CmdQuadRead          = 0xEB
	CmdQuadWrite         = 0x38
	CmdNoOp              = 0xFF
	CmdLinearBurstToggle = 0xC0
)

// ExpectedManufacturerID is the known-good-die byte every supported chip
// returns from a ReadID exchange.
const ExpectedManufacturerID = 0x5D

// ReadDummyCycles is the read turnaround the quad-read command needs between
// the address phase and the first data nibble.
const ReadDummyCycles = 6
