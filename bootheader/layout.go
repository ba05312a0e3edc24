package bootheader

import "crypto/sha256"

// Magic values stored in the boot header. All three are big-endian on disk
// and spell out ASCII tags ("BFNP", "FCFG", "PCFG").
const (
	// HeadMagic identifies the boot header itself
	HeadMagic = 0x42464E50

	// FlashMagic identifies the flash configuration block
	FlashMagic = 0x46434647

	// ClockMagic identifies the clock configuration block
	ClockMagic = 0x50434647
)

// Byte offsets of the header fields within the image file.
const (
	// OffsetHeadMagic is the offset of the header magic (4 bytes, big-endian)
	OffsetHeadMagic = 0x000

	// OffsetFlashMagic is the offset of the flash config magic (4 bytes, big-endian)
	OffsetFlashMagic = 0x008

	// OffsetClockMagic is the offset of the clock config magic (4 bytes, big-endian)
	OffsetClockMagic = 0x064

	// OffsetBodyStart is the offset of the group image offset field
	// (4 bytes, little-endian): where the hashed image body begins
	OffsetBodyStart = 0x084

	// OffsetBodyLength is the offset of the image body length field
	// (4 bytes, little-endian): how many bytes of body are hashed
	OffsetBodyLength = 0x08C

	// OffsetSha256 is the offset of the stored SHA-256 body hash (32 bytes)
	OffsetSha256 = 0x090

	// OffsetHeaderCRC is the offset of the header CRC-32 field
	// (4 bytes, little-endian), computed over bytes [0, OffsetHeaderCRC)
	OffsetHeaderCRC = 0x15C

	// HeadLength is the total boot header size; files shorter than this
	// cannot carry a complete header
	HeadLength = 0x160
)

// HashSize is the size of the stored body hash in bytes.
const HashSize = sha256.Size
