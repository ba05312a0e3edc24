package isp

import "fmt"

// ResponseLengthError indicates that a response buffer does not have the
// length the command expects. A device returning malformed responses must
// surface as an error, never as a crash of the flashing session.
type ResponseLengthError struct {
	// Got is the observed response length in bytes
	Got int

	// Want is the length the command expects
	Want int
}

func (e *ResponseLengthError) Error() string {
	return fmt.Sprintf("invalid response length: got %d bytes, expected %d", e.Got, e.Want)
}
