// Package isp implements the In-System-Programming command set of the
// chip's boot ROM: the byte-exact request payloads and response shapes for
// querying boot information, erasing flash and writing flash.
//
// # Command Model
//
// Each command is a small value implementing the Command interface. A
// command knows its constant command ID, serializes its own request payload
// and parses its own response:
//
//	cmd := isp.GetBootInfo{}
//	resp, err := transport.Exchange(ctx, cmd.CommandID(), cmd.Payload())
//	if err != nil {
//	    return err
//	}
//	info, err := cmd.ParseResponse(resp)
//
// Commands hold no state across calls; construct one per operation and
// discard it after its response is parsed.
//
// # Transport
//
// This package never touches a serial device. The transport is an external
// collaborator that takes a command ID plus request bytes and returns the
// raw response payload, handling link framing, timing and retries.
//
// # Error Handling
//
// Responses of the wrong length, including unexpected data on commands that
// answer with none, return a typed ResponseLengthError. A malfunctioning or
// malicious device can therefore never crash the flashing session through a
// malformed buffer.
package isp
