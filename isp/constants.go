package isp

// Command IDs understood by the boot ROM.
const (
	// CmdGetBootInfo queries boot ROM version and flash configuration
	CmdGetBootInfo = 0x10

	// CmdEraseFlash erases a flash address range
	CmdEraseFlash = 0x30

	// CmdWriteFlash writes raw data at a flash address
	CmdWriteFlash = 0x31
)

// Response data sizes.
const (
	// BootInfoSize is the data size of the Get Boot Info response (24 bytes)
	BootInfoSize = 24

	// EraseFlashPayloadSize is the request payload size for Erase Flash:
	// start(4) + end(4), both little-endian
	EraseFlashPayloadSize = 8

	// WriteFlashHeaderSize is the fixed prefix of the Write Flash payload:
	// the little-endian start address preceding the raw data
	WriteFlashHeaderSize = 4
)
