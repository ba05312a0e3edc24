package bootheader

import "fmt"

// HeadMagicError indicates that the header magic at offset 0x000 is wrong.
type HeadMagicError struct {
	// Got is the observed (wrong) value
	Got uint32
}

func (e *HeadMagicError) Error() string {
	return fmt.Sprintf("invalid boot header magic: got 0x%08X, expected 0x%08X", e.Got, HeadMagic)
}

// FlashMagicError indicates that the flash config magic at offset 0x008 is wrong.
type FlashMagicError struct {
	// Got is the observed (wrong) value
	Got uint32
}

func (e *FlashMagicError) Error() string {
	return fmt.Sprintf("invalid flash config magic: got 0x%08X, expected 0x%08X", e.Got, FlashMagic)
}

// ClockMagicError indicates that the clock config magic at offset 0x064 is wrong.
type ClockMagicError struct {
	// Got is the observed (wrong) value
	Got uint32
}

func (e *ClockMagicError) Error() string {
	return fmt.Sprintf("invalid clock config magic: got 0x%08X, expected 0x%08X", e.Got, ClockMagic)
}

// HeaderTooShortError indicates that the file is too small to hold a
// complete boot header.
type HeaderTooShortError struct {
	// Length is the observed file length in bytes
	Length int64
}

func (e *HeaderTooShortError) Error() string {
	return fmt.Sprintf("image too short for boot header: got 0x%X bytes, need at least 0x%X", e.Length, HeadLength)
}

// BodyRangeError indicates that the declared image body range extends past
// the end of the file.
type BodyRangeError struct {
	// FileLength is the total file length in bytes
	FileLength int64

	// Offset is the declared body start offset
	Offset uint32

	// Length is the declared body length
	Length uint32
}

func (e *BodyRangeError) Error() string {
	return fmt.Sprintf("image body out of range: offset 0x%X + length 0x%X exceeds file length 0x%X",
		e.Offset, e.Length, e.FileLength)
}

// HashMismatchError indicates that the stored body hash matches neither the
// computed digest nor a known unfilled sentinel pattern. This points at
// genuine corruption or tampering rather than a freshly linked image.
type HashMismatchError struct {
	// Stored is the (wrong) hash found in the header
	Stored [HashSize]byte

	// Computed is the digest calculated over the image body
	Computed [HashSize]byte
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("image body hash mismatch: stored %x, computed %x", e.Stored, e.Computed)
}
