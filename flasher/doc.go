// Package flasher orchestrates a flashing session against a device in ISP
// mode: querying boot information, erasing flash and writing an image in
// chunks, with optional progress reporting and logging.
//
// The flasher is transport-agnostic. It builds isp.Command values, hands
// their payloads to a Transport and parses the raw responses; the transport
// owns the serial link, its framing and its timing. See the serialport
// package for a ready-made transport over a local serial port.
//
// # Usage
//
//	port, err := serialport.Open("/dev/ttyUSB0", 115200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	if err := port.Handshake(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fl := flasher.New(port,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//	if err := fl.Flash(ctx, 0x2000, image); err != nil {
//	    log.Fatal(err)
//	}
//
// The flasher does not retry failed exchanges and does not re-validate the
// image; run the image through the bootheader package before flashing.
package flasher
