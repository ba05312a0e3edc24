package isp

import "encoding/binary"

// BootInfo is the decoded Get Boot Info response.
//
// Wire layout (24 bytes):
//
//	[BOOT_ROM_VERSION(4)][RESERVED(4)][FLASH_INFO(4, little-endian)][CHIP_ID(6)][RESERVED(6)]
type BootInfo struct {
	// BootROMVersion is the raw boot ROM version bytes
	BootROMVersion [4]byte

	// Reserved1 is unused by current boot ROMs
	Reserved1 [4]byte

	// FlashInfo is the flash configuration word sampled by the boot ROM
	FlashInfo uint32

	// ChipID is the unique chip identifier
	ChipID [6]byte

	// Reserved2 is unused by current boot ROMs
	Reserved2 [6]byte
}

// FlashPin returns the physical pin carrying the flash chip-select/IO
// signal, extracted from the flash configuration word.
func (b *BootInfo) FlashPin() uint32 {
	return (b.FlashInfo >> 14) & 0x1F
}

func parseBootInfo(data []byte) (*BootInfo, error) {
	if len(data) != BootInfoSize {
		return nil, &ResponseLengthError{Got: len(data), Want: BootInfoSize}
	}

	info := &BootInfo{
		FlashInfo: binary.LittleEndian.Uint32(data[8:12]),
	}
	copy(info.BootROMVersion[:], data[0:4])
	copy(info.Reserved1[:], data[4:8])
	copy(info.ChipID[:], data[12:18])
	copy(info.Reserved2[:], data[18:24])

	return info, nil
}
