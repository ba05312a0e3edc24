// Package serialport provides a flasher.Transport over a local serial
// port, speaking the boot ROM's ISP link framing.
//
// # Link Framing
//
// Request:  [CMD][0x00][LEN_L][LEN_H][PAYLOAD...]
// Response: "OK" ([LEN_L][LEN_H][DATA...] for commands that return data)
//
//	or "FL" [CODE_L][CODE_H] when the boot ROM rejects the command
//
// The boot ROM enters ISP mode after receiving a sustained stream of 0x55
// bytes; use Handshake once after opening the port.
//
// This package intentionally implements no retry or backoff policy; a
// failed exchange is reported to the caller as-is.
package serialport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	serial "github.com/albenik/go-serial/v2"

	"github.com/fwtools/go-blboot/isp"
)

const (
	// handshakeByte is streamed to the boot ROM to trigger ISP mode
	handshakeByte = 0x55

	// readTimeoutMs is the serial read timeout in milliseconds
	readTimeoutMs = 2000
)

// Link status markers sent by the boot ROM.
var (
	statusOK   = [2]byte{'O', 'K'}
	statusFail = [2]byte{'F', 'L'}
)

// dataCommands lists the command IDs the boot ROM answers with a
// length-prefixed data payload. Everything else answers with a bare "OK".
var dataCommands = map[byte]bool{
	isp.CmdGetBootInfo: true,
}

// StatusError is a command rejection reported by the boot ROM over the
// serial link.
type StatusError struct {
	// Code is the boot ROM error code
	Code uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("boot ROM rejected command: error code 0x%04X", e.Code)
}

// Port is a serial connection to a device in (or about to enter) ISP mode.
// It implements flasher.Transport.
//
// A Port must be used from a single flashing session at a time.
type Port struct {
	rw   io.ReadWriter
	port *serial.Port
	baud int
}

// Open opens the named serial port at the given baud rate, 8N1.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0", 115200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
func Open(name string, baud int) (*Port, error) {
	p, err := serial.Open(name,
		serial.WithBaudrate(baud),
		serial.WithDataBits(8),
		serial.WithParity(serial.NoParity),
		serial.WithStopBits(serial.OneStopBit),
		serial.WithReadTimeout(readTimeoutMs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	return &Port{rw: p, port: p, baud: baud}, nil
}

// Close closes the underlying serial port.
func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Handshake streams 0x55 bytes at the boot ROM until it acknowledges ISP
// mode with "OK". Call once after opening the port, before any Exchange.
func (p *Port) Handshake() error {
	// Roughly 5 ms worth of 0x55 at the configured baud rate; the ROM
	// samples the stream to lock its UART clock.
	n := p.baud / 2000
	if n < 16 {
		n = 16
	}
	burst := make([]byte, n)
	for i := range burst {
		burst[i] = handshakeByte
	}

	if _, err := p.rw.Write(burst); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	var status [2]byte
	if _, err := io.ReadFull(p.rw, status[:]); err != nil {
		return fmt.Errorf("no handshake response: %w", err)
	}
	if status != statusOK {
		return fmt.Errorf("unexpected handshake response %q", status[:])
	}

	return nil
}

// Exchange sends one framed ISP command and reads the boot ROM's reply,
// returning the raw response payload (empty for commands that answer with
// a bare "OK").
func (p *Port) Exchange(ctx context.Context, commandID byte, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(request) > 0xFFFF {
		return nil, fmt.Errorf("request too large: %d bytes", len(request))
	}

	frame := make([]byte, 4+len(request))
	frame[0] = commandID
	frame[1] = 0x00
	binary.LittleEndian.PutUint16(frame[2:4], uint16(len(request)))
	copy(frame[4:], request)

	if _, err := p.rw.Write(frame); err != nil {
		return nil, fmt.Errorf("failed to send command 0x%02X: %w", commandID, err)
	}

	var status [2]byte
	if _, err := io.ReadFull(p.rw, status[:]); err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	switch status {
	case statusOK:
	case statusFail:
		var code [2]byte
		if _, err := io.ReadFull(p.rw, code[:]); err != nil {
			return nil, fmt.Errorf("failed to read error code: %w", err)
		}
		return nil, &StatusError{Code: binary.LittleEndian.Uint16(code[:])}
	default:
		return nil, fmt.Errorf("unexpected status %q", status[:])
	}

	if !dataCommands[commandID] {
		return nil, nil
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(p.rw, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read response length: %w", err)
	}
	data := make([]byte, binary.LittleEndian.Uint16(lenBuf[:]))
	if _, err := io.ReadFull(p.rw, data); err != nil {
		return nil, fmt.Errorf("failed to read response data: %w", err)
	}

	return data, nil
}
