package isp

import "encoding/binary"

// Command is a single ISP request the boot ROM understands. A command value
// carries its constant command ID and serializes its own request payload;
// the transport layer owns framing, timing and retries.
type Command interface {
	// CommandID returns the constant command byte
	CommandID() byte

	// Payload returns the serialized request payload (nil for none)
	Payload() []byte

	// ExpectsData reports whether the boot ROM answers with a data payload
	ExpectsData() bool
}

// GetBootInfo queries the boot ROM version and flash configuration.
//
// Request payload: none.
// Response payload: BootInfoSize bytes, see BootInfo.
type GetBootInfo struct{}

// CommandID implements Command.
func (GetBootInfo) CommandID() byte { return CmdGetBootInfo }

// Payload implements Command. Get Boot Info carries no request data.
func (GetBootInfo) Payload() []byte { return nil }

// ExpectsData implements Command.
func (GetBootInfo) ExpectsData() bool { return true }

// ParseResponse decodes the boot ROM's reply. The buffer must be exactly
// BootInfoSize bytes; anything else returns a ResponseLengthError.
func (GetBootInfo) ParseResponse(data []byte) (*BootInfo, error) {
	return parseBootInfo(data)
}

// EraseFlash erases the flash range [Start, End).
//
// Request payload: start(4) + end(4), little-endian.
// Response payload: none.
type EraseFlash struct {
	// Start is the first flash address to erase
	Start uint32

	// End is the address one past the last byte to erase
	End uint32
}

// CommandID implements Command.
func (EraseFlash) CommandID() byte { return CmdEraseFlash }

// Payload implements Command.
func (c EraseFlash) Payload() []byte {
	buf := make([]byte, EraseFlashPayloadSize)
	binary.LittleEndian.PutUint32(buf[0:4], c.Start)
	binary.LittleEndian.PutUint32(buf[4:8], c.End)
	return buf
}

// ExpectsData implements Command.
func (EraseFlash) ExpectsData() bool { return false }

// ParseResponse checks the boot ROM's reply. Erase Flash answers with no
// data; a non-empty buffer is a contract violation reported as a
// ResponseLengthError.
func (EraseFlash) ParseResponse(data []byte) error {
	if len(data) != 0 {
		return &ResponseLengthError{Got: len(data), Want: 0}
	}
	return nil
}

// WriteFlash writes Data to flash starting at Start. The target range must
// have been erased first.
//
// Request payload: start(4, little-endian) followed by the raw data bytes.
// Response payload: none.
type WriteFlash struct {
	// Start is the flash address of the first written byte
	Start uint32

	// Data is the raw chunk to program
	Data []byte
}

// CommandID implements Command.
func (WriteFlash) CommandID() byte { return CmdWriteFlash }

// Payload implements Command.
func (c WriteFlash) Payload() []byte {
	buf := make([]byte, WriteFlashHeaderSize+len(c.Data))
	binary.LittleEndian.PutUint32(buf[0:WriteFlashHeaderSize], c.Start)
	copy(buf[WriteFlashHeaderSize:], c.Data)
	return buf
}

// ExpectsData implements Command.
func (WriteFlash) ExpectsData() bool { return false }

// ParseResponse checks the boot ROM's reply. Write Flash answers with no
// data; a non-empty buffer is reported as a ResponseLengthError.
func (WriteFlash) ParseResponse(data []byte) error {
	if len(data) != 0 {
		return &ResponseLengthError{Got: len(data), Want: 0}
	}
	return nil
}
